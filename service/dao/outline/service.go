package outline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/shelfpub/decker/internal/yml"
	"github.com/shelfpub/decker/model"
	"github.com/shelfpub/decker/service/meta"
	"gopkg.in/yaml.v3"
)

// Service loads and caches deck outlines.  Two source dialects are supported:
// YAML manifests (the native format) and RST index files whose `.. include::`
// directives define entry order.
type Service struct {
	metaService  *meta.Service
	rootNodeName string
	cache        map[string]*model.Outline
	mux          sync.RWMutex
}

// RootNodeName returns the manifest node holding the deck entries.
func (s *Service) RootNodeName() string {
	return s.rootNodeName
}

// Load loads an outline from the specified URL.  URLs without extension
// default to .yaml; .rst sources are parsed as include-directive indexes.
func (s *Service) Load(ctx context.Context, URL string) (*model.Outline, error) {
	ext := filepath.Ext(URL)
	if ext == "" {
		URL += ".yaml"
		ext = ".yaml"
	}
	s.mux.RLock()
	cached, ok := s.cache[URL]
	s.mux.RUnlock()
	if ok {
		return cached.Clone(), nil
	}

	var outline *model.Outline
	var err error
	switch strings.ToLower(ext) {
	case ".rst":
		data, dErr := s.metaService.Download(ctx, URL)
		if dErr != nil {
			return nil, fmt.Errorf("failed to load outline from %s: %w", URL, dErr)
		}
		outline, err = s.parseIndex(URL, data)
	default:
		var node yaml.Node
		if err = s.metaService.Load(ctx, URL, &node); err != nil {
			return nil, fmt.Errorf("failed to load outline from %s: %w", URL, err)
		}
		outline, err = s.ParseOutline(URL, &node)
	}
	if err != nil {
		return nil, err
	}

	s.mux.Lock()
	s.cache[URL] = outline.Clone()
	s.mux.Unlock()
	return outline, nil
}

// Refresh discards any cached copy of the outline at URL; the next Load
// reloads it through the meta service.
func (s *Service) Refresh(URL string) {
	s.mux.Lock()
	delete(s.cache, URL)
	s.mux.Unlock()
}

// Upsert stores outline in the cache under URL for immediate availability.
func (s *Service) Upsert(URL string, outline *model.Outline) {
	if outline == nil {
		return
	}
	s.mux.Lock()
	s.cache[URL] = outline.Clone()
	s.mux.Unlock()
}

// DecodeYAML decodes an outline from a YAML manifest
func (s *Service) DecodeYAML(encoded []byte) (*model.Outline, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(encoded, &node); err != nil {
		return nil, err
	}
	return s.ParseOutline("", &node)
}

// ParseOutline converts a YAML node to the outline model and validates it.
func (s *Service) ParseOutline(URL string, node *yaml.Node) (*model.Outline, error) {
	outline := &model.Outline{
		Source: &model.Source{URL: URL},
		Name:   nameFromURL(URL),
	}
	if err := s.parseOutline((*yml.Node)(node), outline); err != nil {
		return nil, fmt.Errorf("failed to parse outline from %s: %w", URL, err)
	}
	if outline.Name == "" {
		outline.Name = generateAnonymousName()
	}
	if issues := outline.Validate(); len(issues) > 0 {
		return nil, issues[0]
	}
	return outline, nil
}

// nameFromURL extracts the outline name from URL (file name without extension)
func nameFromURL(URL string) string {
	base := filepath.Base(URL)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *Service) parseOutline(node *yml.Node, outline *model.Outline) error {
	rootNode := node.Root()
	rootNodeName := strings.ToLower(s.rootNodeName)
	return rootNode.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "name":
			if valueNode.Kind == yaml.ScalarNode {
				outline.Name = valueNode.Value
			}
		case "description":
			if valueNode.Kind == yaml.ScalarNode {
				outline.Description = valueNode.Value
			}
		case "version":
			if valueNode.Kind == yaml.ScalarNode {
				outline.Version = valueNode.Value
			}
		case "format":
			if valueNode.Kind == yaml.ScalarNode {
				outline.Format = model.Format(valueNode.Value)
			}
		case "output":
			if valueNode.Kind == yaml.ScalarNode {
				outline.Output = valueNode.Value
			}
		case "preamble":
			if valueNode.Kind == yaml.ScalarNode {
				outline.Preamble = valueNode.Value
			}
		case "postamble":
			if valueNode.Kind == yaml.ScalarNode {
				outline.Postamble = valueNode.Value
			}
		case rootNodeName:
			entries, err := parseEntries(valueNode)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", rootNodeName, err)
			}
			outline.Entries = entries
		}
		return nil
	})
}

// parseEntries converts the deck node to outline entries.  Items may be plain
// topic scalars or mappings with topic/title keys.
func parseEntries(node *yml.Node) ([]*model.Entry, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("deck node should be a sequence")
	}
	var entries []*model.Entry
	err := node.Items(func(index int, item *yml.Node) error {
		switch item.Kind {
		case yaml.ScalarNode:
			entries = append(entries, &model.Entry{Topic: item.Value})
			return nil
		case yaml.MappingNode:
			entry := &model.Entry{}
			if err := item.Pairs(func(key string, valueNode *yml.Node) error {
				switch strings.ToLower(key) {
				case "topic":
					entry.Topic = valueNode.Value
				case "title":
					entry.Title = valueNode.Value
				}
				return nil
			}); err != nil {
				return err
			}
			entries = append(entries, entry)
			return nil
		default:
			return fmt.Errorf("entry %d should be a scalar or a mapping", index)
		}
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// parseIndex builds an outline from an RST index file: each `.. include::`
// directive contributes one entry, in document order.
func (s *Service) parseIndex(URL string, data []byte) (*model.Outline, error) {
	topics, err := ParseIncludes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index %s: %w", URL, err)
	}
	outline := model.NewOutline(nameFromURL(URL)).WithFormat(model.FormatRST)
	outline.Source = &model.Source{URL: URL}
	outline.Append(topics...)
	if issues := outline.Validate(); len(issues) > 0 {
		return nil, issues[0]
	}
	return outline, nil
}

// Option customises the outline service.
type Option func(*Service)

// WithRootNodeName sets the manifest node holding deck entries.
func WithRootNodeName(name string) Option {
	return func(s *Service) {
		s.rootNodeName = name
	}
}

// WithMetaService sets the meta service
func WithMetaService(meta *meta.Service) Option {
	return func(s *Service) {
		s.metaService = meta
	}
}

// New creates a new outline service instance
func New(opts ...Option) *Service {
	ret := &Service{
		metaService:  meta.New(afs.New(), ""),
		rootNodeName: "deck",
		cache:        make(map[string]*model.Outline),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
