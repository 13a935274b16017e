package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutline_Validate(t *testing.T) {
	testCases := []struct {
		name         string
		outline      *Outline
		expectIssues int
	}{
		{
			name:         "valid outline",
			outline:      NewOutline("python-advanced").Append("object_model", "higher_order"),
			expectIssues: 0,
		},
		{
			name:         "duplicate topics are legal",
			outline:      NewOutline("deck").Append("object_model", "debugging", "object_model"),
			expectIssues: 0,
		},
		{
			name:         "no entries",
			outline:      NewOutline("empty"),
			expectIssues: 1,
		},
		{
			name:         "empty topic",
			outline:      NewOutline("deck").Append("object_model", " "),
			expectIssues: 1,
		},
		{
			name:         "unsupported format",
			outline:      NewOutline("deck").Append("object_model").WithFormat("pdf"),
			expectIssues: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			issues := tc.outline.Validate()
			assert.Equal(t, tc.expectIssues, len(issues), tc.name)
		})
	}
}

func TestOutline_Topics(t *testing.T) {
	outline := NewOutline("deck").Append("unittesting", "debugging", "object_model", "debugging")
	assert.Equal(t, []string{"unittesting", "debugging", "object_model", "debugging"}, outline.Topics())
}

func TestOutline_Clone(t *testing.T) {
	outline := NewOutline("deck").
		WithVersion("2023").
		WithBoilerplate("intro", "closing").
		Append("object_model", "higher_order")
	outline.Source = &Source{URL: "mem://localhost/outlines/deck.yaml"}

	clone := outline.Clone()
	assert.EqualValues(t, outline, clone)

	clone.Entries[0].Topic = "changed"
	assert.Equal(t, "object_model", outline.Entries[0].Topic)
}

func TestDocument_Content(t *testing.T) {
	doc := &Document{
		Outline:   "deck",
		Format:    FormatMarkdown,
		Separator: "\n---\n",
		Sections: []*Section{
			{Topic: "a", Content: []byte("alpha\n")},
			{Topic: "b", Content: []byte("beta\n")},
			{Topic: "a", Content: []byte("alpha\n")},
		},
	}
	assert.Equal(t, "alpha\n\n---\nbeta\n\n---\nalpha\n", string(doc.Content()))
	assert.Equal(t, 3, doc.Len())
}
