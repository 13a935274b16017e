package decker

import (
	"github.com/viant/afs"
	"github.com/viant/afs/storage"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/shelfpub/decker/model"
	"github.com/shelfpub/decker/service/dao/fragment"
	"github.com/shelfpub/decker/service/dao/outline"
	"github.com/shelfpub/decker/service/meta"
	"github.com/shelfpub/decker/service/publisher"
	"github.com/shelfpub/decker/tracing"
)

// Option customises the assembly service
type Option func(s *Service)

// WithFS sets the file storage service shared by all sub-services
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithMetaService sets the meta service
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) { s.metaService = service }
}

// WithMetaBaseURL sets the meta base URL
func WithMetaBaseURL(url string) Option {
	return func(s *Service) { s.metaBaseURL = url }
}

// WithMetaFsOptions with meta file system options
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) { s.metaFsOptions = options }
}

// WithOutlineDAO sets the outline DAO
func WithOutlineDAO(dao *outline.Service) Option {
	return func(s *Service) { s.runtime.outlineDAO = dao }
}

// WithFragmentDAO sets the fragment DAO
func WithFragmentDAO(dao *fragment.Service) Option {
	return func(s *Service) { s.runtime.fragmentDAO = dao }
}

// WithRootNodeName sets the root outline node name
func WithRootNodeName(name string) Option {
	return func(s *Service) { s.rootNodeName = name }
}

// WithFragmentRoots sets the locations searched for fragments, in order
func WithFragmentRoots(roots ...string) Option {
	return func(s *Service) { s.fragmentRoots = roots }
}

// WithExtensions sets the fragment file extensions probed per root
func WithExtensions(extensions ...string) Option {
	return func(s *Service) { s.extensions = extensions }
}

// WithSeparator overrides the section separator for a format
func WithSeparator(format model.Format, separator string) Option {
	return func(s *Service) {
		if s.separators == nil {
			s.separators = map[model.Format]string{}
		}
		s.separators[format] = separator
	}
}

// WithOutputBaseURL sets the base URL for composed documents without an
// explicit output location
func WithOutputBaseURL(url string) Option {
	return func(s *Service) { s.outputBaseURL = url }
}

// WithPublishRootURL sets the publication root URL
func WithPublishRootURL(url string) Option {
	return func(s *Service) { s.publishRootURL = url }
}

// WithPublishExclude sets asset names or glob patterns skipped during
// publication
func WithPublishExclude(patterns ...string) Option {
	return func(s *Service) { s.publishExclude = patterns }
}

// WithPublishHooks registers post-publish hooks, run in order
func WithPublishHooks(hooks ...*publisher.Hook) Option {
	return func(s *Service) { s.publishHooks = hooks }
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times – the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter. This enables
// integrations with exporters other than the built-in stdout exporter, for example OTLP, Jaeger or
// Zipkin. The function is safe to call multiple times – the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
