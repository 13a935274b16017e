package outline

import (
	"context"
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	_ "github.com/viant/afs/embed"

	"github.com/shelfpub/decker/model"
	"github.com/shelfpub/decker/service/meta"
)

// testFS holds our test outline files
//
//go:embed testdata/*
var testFS embed.FS

func newTestService() *Service {
	return New(WithMetaService(meta.New(afs.New(), "embed:///testdata", &testFS)))
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name        string
		url         string
		expectedErr bool
		expect      model.Outline
	}{
		{
			name: "yaml manifest",
			url:  "deck.yaml",
			expect: model.Outline{
				Source:    &model.Source{URL: "deck.yaml"},
				Name:      "python-advanced",
				Version:   "2023",
				Format:    model.FormatRST,
				Preamble:  "intro",
				Postamble: "closing",
				Entries: []*model.Entry{
					{Topic: "unittesting"},
					{Topic: "debugging"},
					{Topic: "object_model", Title: "The Object Model"},
					{Topic: "higher_order"},
					{Topic: "parallel"},
				},
			},
		},
		{
			name: "rst index with duplicate include",
			url:  "index.rst",
			expect: model.Outline{
				Source: &model.Source{URL: "index.rst"},
				Name:   "index",
				Format: model.FormatRST,
				Entries: []*model.Entry{
					{Topic: "object_model"},
					{Topic: "higher_order"},
					{Topic: "object_model"},
				},
			},
		},
		{
			name:        "manifest without entries",
			url:         "empty.yaml",
			expectedErr: true,
		},
		{
			name:        "missing outline",
			url:         "nowhere.yaml",
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		service := newTestService()

		t.Run(tc.name, func(t *testing.T) {
			actual, err := service.Load(ctx, tc.url)
			if tc.expectedErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if !assert.NotNil(t, actual) {
				return
			}
			assert.EqualValues(t, tc.expect, *actual, tc.name)
		})
	}
}

func TestService_LoadDefaultsExtension(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	actual, err := service.Load(ctx, "deck")
	assert.NoError(t, err)
	assert.Equal(t, "python-advanced", actual.Name)
}

func TestService_CacheRefreshUpsert(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	first, err := service.Load(ctx, "deck.yaml")
	assert.NoError(t, err)

	// cached copies are independent
	first.Entries[0].Topic = "mutated"
	second, err := service.Load(ctx, "deck.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "unittesting", second.Entries[0].Topic)

	replacement := model.NewOutline("replacement").Append("zip")
	service.Upsert("deck.yaml", replacement)
	swapped, err := service.Load(ctx, "deck.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "replacement", swapped.Name)

	service.Refresh("deck.yaml")
	restored, err := service.Load(ctx, "deck.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "python-advanced", restored.Name)
}

func TestService_DecodeYAML(t *testing.T) {
	service := New()
	outline, err := service.DecodeYAML([]byte("deck:\n  - a\n  - b\n"))
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, outline.Topics())
	assert.NotEmpty(t, outline.Name)
}
