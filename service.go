package decker

import (
	"github.com/viant/afs"
	"github.com/viant/afs/storage"

	"github.com/shelfpub/decker/model"
	"github.com/shelfpub/decker/service/builder"
	"github.com/shelfpub/decker/service/composer"
	"github.com/shelfpub/decker/service/dao/fragment"
	"github.com/shelfpub/decker/service/dao/outline"
	"github.com/shelfpub/decker/service/meta"
	"github.com/shelfpub/decker/service/publisher"
	"github.com/shelfpub/decker/service/verify"
)

type Service struct {
	runtime        *Runtime
	fs             afs.Service
	metaService    *meta.Service
	metaBaseURL    string
	metaFsOptions  []storage.Option
	rootNodeName   string
	fragmentRoots  []string
	extensions     []string
	separators     map[model.Format]string
	outputBaseURL  string
	publishRootURL string
	publishExclude []string
	publishHooks   []*publisher.Hook
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	composerOptions := make([]composer.Option, 0, len(s.separators))
	for format, separator := range s.separators {
		composerOptions = append(composerOptions, composer.WithSeparator(format, separator))
	}
	s.runtime.composer = composer.New(composerOptions...)
	s.runtime.builder = builder.New(
		builder.WithOutlineService(s.runtime.outlineDAO),
		builder.WithFragmentService(s.runtime.fragmentDAO),
		builder.WithComposer(s.runtime.composer),
		builder.WithFS(s.fs),
		builder.WithOutputBaseURL(s.outputBaseURL))
	s.runtime.verifier = verify.New(s.runtime.builder, verify.WithFS(s.fs))
	s.runtime.publisher = publisher.New(
		publisher.WithFS(s.fs),
		publisher.WithRootURL(s.publishRootURL),
		publisher.WithExclude(s.publishExclude...),
		publisher.WithHooks(s.publishHooks...))
}

func (s *Service) Runtime() *Runtime {
	return s.runtime
}

func (s *Service) ensureBaseSetup() {
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.metaService == nil {
		s.metaService = meta.New(s.fs, s.metaBaseURL, s.metaFsOptions...)
	}
	if s.runtime.outlineDAO == nil {
		if s.rootNodeName == "" {
			s.rootNodeName = "deck"
		}
		s.runtime.outlineDAO = outline.New(outline.WithRootNodeName(s.rootNodeName), outline.WithMetaService(s.metaService))
	}
	if s.runtime.fragmentDAO == nil {
		fragmentOptions := []fragment.Option{fragment.WithFS(s.fs)}
		if len(s.fragmentRoots) > 0 {
			fragmentOptions = append(fragmentOptions, fragment.WithRoots(s.fragmentRoots...))
		}
		if len(s.extensions) > 0 {
			fragmentOptions = append(fragmentOptions, fragment.WithExtensions(s.extensions...))
		}
		if len(s.metaFsOptions) > 0 {
			fragmentOptions = append(fragmentOptions, fragment.WithFsOptions(s.metaFsOptions...))
		}
		s.runtime.fragmentDAO = fragment.New(fragmentOptions...)
	}
}

func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}}
	ret.init(options)
	return ret
}

// NewFromConfig builds a service from a serialisable configuration. Options
// are applied after the configuration and may override it.
func NewFromConfig(config *Config, options ...Option) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	var configured []Option
	if config != nil {
		configured = append(configured,
			WithFragmentRoots(config.Fragments.Roots...),
			WithExtensions(config.Fragments.Extensions...),
			WithRootNodeName(config.Outline.RootNodeName),
			WithOutputBaseURL(config.Output.BaseURL),
			WithPublishRootURL(config.Publish.RootURL),
			WithPublishExclude(config.Publish.Exclude...))
	}
	return New(append(configured, options...)...), nil
}
