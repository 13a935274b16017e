package model

import (
	"fmt"
	"strings"
)

// Format identifies the markup dialect a composed document is emitted in.
type Format string

const (
	// FormatRST emits fragments joined by blank lines (reStructuredText decks).
	FormatRST Format = "rst"

	// FormatMarkdown emits fragments joined by horizontal-rule slide separators.
	FormatMarkdown Format = "md"
)

// Outline represents a deck definition
type Outline struct {

	// Source provides information about the origin of the outline
	Source *Source `json:"source,omitempty" yaml:"source,omitempty"`

	// Name is the unique identifier for the deck
	Name string `json:"name" yaml:"name"`

	// Description provides a human-readable description of the deck
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Version identifies the deck instance (e.g. a course year)
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Format selects the output markup dialect; defaults to FormatRST
	Format Format `json:"format,omitempty" yaml:"format,omitempty"`

	// Output is the URL the composed document is written to; derived from
	// Name when empty
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Preamble names a fragment emitted before all entries
	Preamble string `json:"preamble,omitempty" yaml:"preamble,omitempty"`

	// Postamble names a fragment emitted after all entries
	Postamble string `json:"postamble,omitempty" yaml:"postamble,omitempty"`

	// Entries define the deck table of contents; order is presentation order
	Entries []*Entry `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// Entry is a single outline position referencing one fragment topic. The same
// topic may appear more than once; each occurrence re-emits the fragment.
type Entry struct {
	Topic string `json:"topic" yaml:"topic"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

type Source struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Topics returns the ordered topic identifiers, duplicates preserved.
func (o *Outline) Topics() []string {
	topics := make([]string, 0, len(o.Entries))
	for _, entry := range o.Entries {
		topics = append(topics, entry.Topic)
	}
	return topics
}

// Validate performs a best-effort structural validation of the outline.  The
// returned slice is empty when the outline is sound; otherwise it contains
// human-readable error descriptions.  Duplicate topics are legal and are NOT
// reported - the same fragment may appear at several outline positions.
func (o *Outline) Validate() []error {
	var issues []error

	if len(o.Entries) == 0 {
		issues = append(issues, fmt.Errorf("outline has no entries"))
		return issues
	}
	for i, entry := range o.Entries {
		if entry == nil {
			issues = append(issues, fmt.Errorf("entry %d is nil", i))
			continue
		}
		if strings.TrimSpace(entry.Topic) == "" {
			issues = append(issues, fmt.Errorf("entry %d has empty topic", i))
		}
	}
	switch o.Format {
	case "", FormatRST, FormatMarkdown:
	default:
		issues = append(issues, fmt.Errorf("unsupported format %q", o.Format))
	}
	return issues
}

// NewOutline creates a new outline with the given name
func NewOutline(name string) *Outline {
	return &Outline{Name: name}
}

// WithDescription sets the description of the outline
func (o *Outline) WithDescription(description string) *Outline {
	o.Description = description
	return o
}

// WithVersion sets the deck instance version
func (o *Outline) WithVersion(version string) *Outline {
	o.Version = version
	return o
}

// WithFormat sets the output markup dialect
func (o *Outline) WithFormat(format Format) *Outline {
	o.Format = format
	return o
}

// WithOutput sets the composed document destination URL
func (o *Outline) WithOutput(URL string) *Outline {
	o.Output = URL
	return o
}

// WithBoilerplate sets preamble and postamble fragment topics
func (o *Outline) WithBoilerplate(preamble, postamble string) *Outline {
	o.Preamble = preamble
	o.Postamble = postamble
	return o
}

// Append adds topics at the end of the outline
func (o *Outline) Append(topics ...string) *Outline {
	for _, topic := range topics {
		o.Entries = append(o.Entries, &Entry{Topic: topic})
	}
	return o
}

// Clone creates a deep copy of the outline
func (o *Outline) Clone() *Outline {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Source != nil {
		source := *o.Source
		clone.Source = &source
	}
	if o.Entries != nil {
		clone.Entries = make([]*Entry, len(o.Entries))
		for i, entry := range o.Entries {
			item := *entry
			clone.Entries[i] = &item
		}
	}
	return &clone
}
