package publisher

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"

	"github.com/shelfpub/decker/tracing"
)

// Request describes one deck publication.
type Request struct {
	// SourceURL is the directory holding the built deck assets
	SourceURL string `json:"sourceURL" yaml:"sourceURL"`

	// Name is the deck name, e.g. python-advanced
	Name string `json:"name" yaml:"name"`

	// Instance versions the publication, e.g. a course year
	Instance string `json:"instance" yaml:"instance"`
}

// Result reports where a publication landed.
type Result struct {
	TargetURL string `json:"targetURL"`
	LatestURL string `json:"latestURL"`
	PackURL   string `json:"packURL"`
	Assets    int    `json:"assets"`
}

// Service publishes built decks: it copies deck assets to a versioned
// location under the publish root, rewrites a "latest" pointer asset and
// produces a tar.gz pack for offline distribution.  Asset names matching the
// exclude list are skipped.
type Service struct {
	fs      afs.Service
	rootURL string
	exclude []string
	hooks   []*Hook
}

// Publish copies the deck at request.SourceURL to
// <root>/<name>-<instance>/, refreshes the latest pointer and uploads the
// distributable pack.  Post-publish hooks run after all assets are in place.
func (s *Service) Publish(ctx context.Context, request *Request) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "publish")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if err = s.validate(request); err != nil {
		return nil, err
	}
	folder := request.Name + "-" + request.Instance
	result := &Result{
		TargetURL: url.Join(s.rootURL, folder),
		LatestURL: url.Join(s.rootURL, request.Name+"-latest"),
	}

	assets, err := s.listAssets(ctx, request.SourceURL)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		err = fmt.Errorf("nothing to publish at %s", request.SourceURL)
		return nil, err
	}

	for _, asset := range assets {
		dest := url.Join(result.TargetURL, asset.name)
		if err = s.fs.Upload(ctx, dest, file.DefaultFileOsMode, bytes.NewReader(asset.data)); err != nil {
			return nil, fmt.Errorf("failed to publish %s: %w", dest, err)
		}
	}
	result.Assets = len(assets)

	// the latest pointer names the current instance folder; consumers
	// resolve it instead of hardcoding the instance
	if err = s.fs.Upload(ctx, result.LatestURL, file.DefaultFileOsMode,
		strings.NewReader(folder+"\n")); err != nil {
		return nil, fmt.Errorf("failed to update latest pointer: %w", err)
	}

	pack, err := buildPack(folder, assets)
	if err != nil {
		return nil, err
	}
	result.PackURL = url.Join(result.TargetURL, folder+".tar.gz")
	if err = s.fs.Upload(ctx, result.PackURL, file.DefaultFileOsMode, bytes.NewReader(pack)); err != nil {
		return nil, fmt.Errorf("failed to upload pack: %w", err)
	}

	for _, hook := range s.hooks {
		if err = s.runHook(ctx, hook, request, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Service) validate(request *Request) error {
	switch {
	case request == nil:
		return fmt.Errorf("request was nil")
	case request.SourceURL == "":
		return fmt.Errorf("sourceURL was empty")
	case request.Name == "":
		return fmt.Errorf("name was empty")
	case request.Instance == "":
		return fmt.Errorf("instance was empty")
	}
	return nil
}

type asset struct {
	name string
	data []byte
}

func (s *Service) listAssets(ctx context.Context, sourceURL string) ([]*asset, error) {
	objects, err := s.fs.List(ctx, sourceURL, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", sourceURL, err)
	}
	var assets []*asset
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		name := strings.TrimPrefix(strings.TrimPrefix(object.URL(), sourceURL), "/")
		if name == "" {
			name = path.Base(object.URL())
		}
		if s.excluded(name) {
			continue
		}
		data, err := s.fs.DownloadWithURL(ctx, object.URL())
		if err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", object.URL(), err)
		}
		assets = append(assets, &asset{name: name, data: data})
	}
	return assets, nil
}

func (s *Service) excluded(name string) bool {
	for _, pattern := range s.exclude {
		if name == pattern || strings.HasPrefix(name, pattern+"/") {
			return true
		}
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Option customises the publisher.
type Option func(*Service)

// WithFS sets the backing afs service.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithRootURL sets the publish root all targets are resolved against.
func WithRootURL(rootURL string) Option {
	return func(s *Service) { s.rootURL = rootURL }
}

// WithExclude sets asset names or glob patterns skipped during publication.
func WithExclude(patterns ...string) Option {
	return func(s *Service) { s.exclude = patterns }
}

// WithHooks registers post-publish hooks, run in order.
func WithHooks(hooks ...*Hook) Option {
	return func(s *Service) { s.hooks = hooks }
}

// New creates a publisher service.
func New(opts ...Option) *Service {
	ret := &Service{fs: afs.New()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
