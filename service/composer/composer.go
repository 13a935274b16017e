package composer

import (
	"fmt"

	"github.com/shelfpub/decker/internal/clock"
	"github.com/shelfpub/decker/model"
	"github.com/shelfpub/decker/service/dao/fragment"
)

// Default separators per markup dialect.  RST fragments are self-delimiting
// (section underlines), markdown decks use horizontal-rule slide breaks.
const (
	rstSeparator      = "\n"
	markdownSeparator = "\n---\n"
)

// Service concatenates resolved fragments into a composed document.  It is
// stateless and pure: it never mutates its inputs, never deduplicates and
// preserves order exactly, so composing the same inputs twice yields
// byte-identical output.
type Service struct {
	separators map[model.Format]string
}

// Sequence expands an outline to the ordered topic list the composer expects:
// preamble (when set), each entry in outline order, postamble (when set).
func Sequence(outline *model.Outline) []string {
	sequence := make([]string, 0, len(outline.Entries)+2)
	if outline.Preamble != "" {
		sequence = append(sequence, outline.Preamble)
	}
	sequence = append(sequence, outline.Topics()...)
	if outline.Postamble != "" {
		sequence = append(sequence, outline.Postamble)
	}
	return sequence
}

// Compose assembles the resolved fragments into one document.  The fragments
// slice must align one to one with Sequence(outline); each occurrence of a
// topic contributes its full content at that position.
func (s *Service) Compose(outline *model.Outline, fragments []*fragment.Fragment) (*model.Document, error) {
	if outline == nil {
		return nil, fmt.Errorf("outline was nil")
	}
	sequence := Sequence(outline)
	if len(fragments) != len(sequence) {
		return nil, fmt.Errorf("outline %s expects %d fragments, got %d", outline.Name, len(sequence), len(fragments))
	}

	format := outline.Format
	if format == "" {
		format = model.FormatRST
	}
	document := &model.Document{
		Outline:    outline.Name,
		Version:    outline.Version,
		Format:     format,
		Separator:  s.separator(format),
		Sections:   make([]*model.Section, 0, len(fragments)),
		ComposedAt: clock.Now(),
	}
	for i, frag := range fragments {
		if frag == nil {
			return nil, fmt.Errorf("fragment %d (%s) was nil", i, sequence[i])
		}
		if frag.Topic != sequence[i] {
			return nil, fmt.Errorf("fragment %d mismatch: expected %s, got %s", i, sequence[i], frag.Topic)
		}
		document.Sections = append(document.Sections, &model.Section{
			Topic:   frag.Topic,
			URL:     frag.URL,
			Content: append([]byte(nil), frag.Content...),
		})
	}
	return document, nil
}

func (s *Service) separator(format model.Format) string {
	if sep, ok := s.separators[format]; ok {
		return sep
	}
	return rstSeparator
}

// Option customises the composer.
type Option func(*Service)

// WithSeparator overrides the separator emitted between sections of the
// given format.
func WithSeparator(format model.Format, separator string) Option {
	return func(s *Service) {
		s.separators[format] = separator
	}
}

// New creates a composer with default separators.
func New(opts ...Option) *Service {
	ret := &Service{
		separators: map[model.Format]string{
			model.FormatRST:      rstSeparator,
			model.FormatMarkdown: markdownSeparator,
		},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
