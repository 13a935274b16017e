package outline

// RST index parsing. An index file is an ordinary slide document whose
// `.. include::` directives name the fragments of the deck, in order. It is
// implemented with the github.com/viant/parsly tokenizer.

import (
	"path/filepath"
	"strings"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const tInclude = 1

var (
	tokWS      = parsly.NewToken(0, "WS", matcher.NewWhiteSpace())
	tokInclude = parsly.NewToken(tInclude, "Include", matcher.NewFragment(".. include::"))
)

// ParseIncludes extracts topic identifiers from the include directives of an
// RST index document, preserving document order and duplicates.  All other
// content (titles, prose, directive options) is ignored.
func ParseIncludes(data []byte) ([]string, error) {
	p := &indexParser{cursor: parsly.NewCursor("index", data, 0)}
	return p.parse()
}

type indexParser struct {
	cursor *parsly.Cursor
}

func (p *indexParser) parse() ([]string, error) {
	cur := p.cursor
	var topics []string
	for cur.HasMore() {
		match := cur.MatchAfterOptional(tokWS, tokInclude)
		switch match.Code {
		case tInclude:
			target := strings.TrimSpace(p.consumeLine())
			if topic := topicFromTarget(target); topic != "" {
				topics = append(topics, topic)
			}
		case parsly.EOF:
			return topics, nil
		default:
			// not an include directive - skip the rest of the line
			p.consumeLine()
		}
	}
	return topics, nil
}

// consumeLine consumes bytes until newline (inclusive) or EOF and returns the
// text before the newline.
func (p *indexParser) consumeLine() string {
	cur := p.cursor
	start := cur.Pos
	for cur.Pos < cur.InputSize {
		if cur.Input[cur.Pos] == '\n' {
			text := string(cur.Input[start:cur.Pos])
			cur.Pos++
			return text
		}
		cur.Pos++
	}
	return string(cur.Input[start:])
}

// topicFromTarget maps an include target path to its topic identifier: the
// base file name without extension.
func topicFromTarget(target string) string {
	if target == "" {
		return ""
	}
	// directive options may trail the path on the same line
	if idx := strings.IndexAny(target, " \t"); idx >= 0 {
		target = target[:idx]
	}
	base := filepath.Base(target)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
