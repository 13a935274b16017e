package builder

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/shelfpub/decker/progress"
	"github.com/shelfpub/decker/service/dao/fragment"
	"github.com/shelfpub/decker/service/dao/outline"
	"github.com/shelfpub/decker/service/meta"
)

func setupFixtures(ctx context.Context, t *testing.T, fs afs.Service, assets map[string]string) {
	t.Helper()
	for URL, content := range assets {
		err := fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader([]byte(content)))
		assert.Nil(t, err)
	}
}

func newTestBuilder(fs afs.Service, base string) *Service {
	return New(
		WithFS(fs),
		WithOutlineService(outline.New(outline.WithMetaService(meta.New(fs, base+"/outlines")))),
		WithFragmentService(fragment.New(fragment.WithFS(fs), fragment.WithRoots(base+"/fragments"))),
		WithOutputBaseURL(base+"/out"),
	)
}

func TestService_Build(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	base := "mem://localhost/builder-basic"
	setupFixtures(ctx, t, fs, map[string]string{
		base + "/outlines/course.yaml": "name: course\ndeck:\n  - unittesting\n  - debugging\n  - object_model\n  - higher_order\n  - parallel\n",
		base + "/fragments/unittesting.rst":  "Unit Testing\n============\n",
		base + "/fragments/debugging.rst":    "Debugging\n=========\n",
		base + "/fragments/object_model.rst": "Object Model\n============\n",
		base + "/fragments/higher_order.rst": "Higher Order\n============\n",
		base + "/fragments/parallel.rst":     "Parallel\n========\n",
	})

	service := newTestBuilder(fs, base)
	build, err := service.Build(ctx, "course.yaml")
	assert.Nil(t, err)
	assert.NotEmpty(t, build.ID)
	assert.Equal(t, base+"/out/course.rst", build.OutputURL)

	written, err := fs.DownloadWithURL(ctx, build.OutputURL)
	assert.Nil(t, err)
	expect := "Unit Testing\n============\n\nDebugging\n=========\n\nObject Model\n============\n\nHigher Order\n============\n\nParallel\n========\n"
	assert.Equal(t, expect, string(written))

	// rebuilding with unchanged sources yields byte-identical output
	again, err := service.Build(ctx, "course.yaml")
	assert.Nil(t, err)
	assert.Equal(t, build.Document.Content(), again.Document.Content())
}

func TestService_BuildMissingFragment(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	base := "mem://localhost/builder-missing"
	setupFixtures(ctx, t, fs, map[string]string{
		base + "/outlines/course.yaml":  "name: course\ndeck:\n  - object_model\n  - foo\n",
		base + "/fragments/object_model.rst": "Object Model\n============\n",
	})

	service := newTestBuilder(fs, base)
	_, err := service.Build(ctx, "course.yaml")
	assert.NotNil(t, err)
	assert.True(t, fragment.IsNotFound(err))
	assert.Contains(t, err.Error(), "missing fragment: foo")

	// fail-fast: no output file may exist
	exists, err := fs.Exists(ctx, base+"/out/course.rst")
	assert.Nil(t, err)
	assert.False(t, exists)
}

func TestService_BuildAllIndependentOutlines(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	base := "mem://localhost/builder-overlap"
	setupFixtures(ctx, t, fs, map[string]string{
		base + "/outlines/full.yaml":  "name: full\ndeck:\n  - object_model\n  - parallel\n",
		base + "/outlines/short.yaml": "name: short\ndeck:\n  - object_model\n",
		base + "/fragments/object_model.rst": "Object Model\n============\n",
		base + "/fragments/parallel.rst":     "Parallel\n========\n",
	})

	service := newTestBuilder(fs, base)
	builds, err := service.BuildAll(ctx, "full.yaml", "short.yaml")
	assert.Nil(t, err)
	assert.Equal(t, 2, len(builds))

	full, err := fs.DownloadWithURL(ctx, base+"/out/full.rst")
	assert.Nil(t, err)
	short, err := fs.DownloadWithURL(ctx, base+"/out/short.rst")
	assert.Nil(t, err)

	// both documents carry the shared fragment in full
	assert.Contains(t, string(full), "Object Model\n============\n")
	assert.Contains(t, string(short), "Object Model\n============\n")
	assert.NotEqual(t, string(full), string(short))
}

func TestService_BuildProgress(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	base := "mem://localhost/builder-progress"
	setupFixtures(ctx, t, fs, map[string]string{
		base + "/outlines/course.yaml": "name: course\npreamble: intro\ndeck:\n  - debugging\n",
		base + "/fragments/intro.rst":     "Intro\n=====\n",
		base + "/fragments/debugging.rst": "Debugging\n=========\n",
	})

	service := newTestBuilder(fs, base)
	ctx, tracker := progress.WithNewTracker(ctx, "test", "course", nil)
	_, err := service.Build(ctx, "course.yaml")
	assert.Nil(t, err)

	snapshot := tracker.Snapshot()
	assert.Equal(t, 1, snapshot.Outlines)
	assert.Equal(t, 2, snapshot.FragmentsTotal)
	assert.Equal(t, 2, snapshot.FragmentsResolved)
	assert.Equal(t, 2, snapshot.SectionsComposed)
	assert.Equal(t, 0, snapshot.Failed)
}

func TestService_OutputURL(t *testing.T) {
	service := New(WithOutputBaseURL("mem://localhost/out"))

	testCases := []struct {
		name    string
		yaml    string
		expect  string
	}{
		{
			name:   "derived from name and format",
			yaml:   "name: deck\nformat: md\ndeck:\n  - a\n",
			expect: "mem://localhost/out/deck.md",
		},
		{
			name:   "explicit output wins",
			yaml:   "name: deck\noutput: mem://localhost/custom/deck.rst\ndeck:\n  - a\n",
			expect: "mem://localhost/custom/deck.rst",
		},
	}

	dao := outline.New()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			anOutline, err := dao.DecodeYAML([]byte(tc.yaml))
			assert.Nil(t, err)
			assert.Equal(t, tc.expect, service.OutputURL(anOutline))
		})
	}
}
