package model

import (
	"bytes"
	"time"
)

// Section is one resolved fragment occurrence inside a composed document.
type Section struct {
	// Topic is the outline identifier this section was resolved from
	Topic string `json:"topic"`

	// URL points at the fragment source the content was read from
	URL string `json:"url,omitempty"`

	// Content is the fragment body, byte for byte
	Content []byte `json:"content"`
}

// Document is the composed output for one outline: the ordered concatenation
// of resolved fragments.  It is a derived artifact - rebuilt from scratch on
// every composition, never mutated in place.
type Document struct {
	// Outline is the name of the outline this document was composed from
	Outline string `json:"outline"`

	// Version mirrors the outline version at composition time
	Version string `json:"version,omitempty"`

	// Format is the markup dialect the sections were joined with
	Format Format `json:"format"`

	// Separator is the byte sequence emitted between adjacent sections
	Separator string `json:"separator,omitempty"`

	// Sections hold resolved fragments in outline order, duplicates included
	Sections []*Section `json:"sections"`

	// ComposedAt records composition time; informative only
	ComposedAt time.Time `json:"composedAt"`
}

// Content renders the document as a single byte slice: sections joined in
// order with the document separator.  Rendering is deterministic - the same
// sections and separator always yield identical bytes.
func (d *Document) Content() []byte {
	var buf bytes.Buffer
	for i, section := range d.Sections {
		if i > 0 {
			buf.WriteString(d.Separator)
		}
		buf.Write(section.Content)
	}
	return buf.Bytes()
}

// Len returns the number of sections.
func (d *Document) Len() int {
	return len(d.Sections)
}
