package meta

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service loads structured assets (outline manifests, configuration) from any
// afs-supported scheme (file, mem, embed, s3, ...).  URLs without a scheme are
// resolved against the configured base URL.  Scalar values may reference
// environment variables with ${env.KEY} expressions.
type Service struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
}

// Resolve returns the absolute URL for the supplied location.
func (s *Service) Resolve(location string) string {
	if strings.Contains(location, "://") || s.baseURL == "" {
		return location
	}
	return url.Join(s.baseURL, location)
}

// Download returns the raw asset bytes for the supplied location.
func (s *Service) Download(ctx context.Context, location string) ([]byte, error) {
	URL := s.Resolve(location)
	data, err := s.fs.DownloadWithURL(ctx, URL, s.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", URL, err)
	}
	return data, nil
}

// Exists reports whether an asset is present at the supplied location.
func (s *Service) Exists(ctx context.Context, location string) (bool, error) {
	return s.fs.Exists(ctx, s.Resolve(location), s.options...)
}

// Load downloads a YAML asset, expands ${env.KEY} expressions in its scalar
// values and unmarshals it into target (a struct pointer or *yaml.Node).
func (s *Service) Load(ctx context.Context, location string, target interface{}) error {
	data, err := s.Download(ctx, location)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", s.Resolve(location), err)
	}
	if node, ok := target.(*yaml.Node); ok {
		expandNodeEnv(node)
	}
	return nil
}

func expandNodeEnv(node *yaml.Node) {
	if node == nil {
		return
	}
	if node.Kind == yaml.ScalarNode {
		node.Value = expandEnvExpr(node.Value)
		return
	}
	for _, child := range node.Content {
		expandNodeEnv(child)
	}
}

// New creates a meta service backed by the supplied afs service.  Options are
// passed through to every storage call (e.g. an *embed.FS for the embed
// scheme).
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	return &Service{fs: fs, baseURL: baseURL, options: options}
}
