package builder

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/shelfpub/decker/internal/clock"
	"github.com/shelfpub/decker/internal/idgen"
	"github.com/shelfpub/decker/model"
	"github.com/shelfpub/decker/progress"
	"github.com/shelfpub/decker/service/composer"
	"github.com/shelfpub/decker/service/dao/fragment"
	"github.com/shelfpub/decker/service/dao/outline"
	"github.com/shelfpub/decker/tracing"
)

// Build describes one completed deck build.
type Build struct {
	ID        string           `json:"id"`
	Outline   *model.Outline   `json:"outline"`
	Document  *model.Document  `json:"-"`
	OutputURL string           `json:"outputURL"`
	StartedAt time.Time        `json:"startedAt"`
	Elapsed   time.Duration    `json:"elapsed"`
}

// Service orchestrates deck builds: load outline, resolve every fragment,
// compose, write the output document.  A build is a one-shot batch
// transformation - it either produces the complete document or fails before
// any output is written.
type Service struct {
	outlines      *outline.Service
	fragments     *fragment.Service
	composer      *composer.Service
	fs            afs.Service
	outputBaseURL string
}

// Build composes the outline at the supplied location and writes the result
// to its output URL.  The first unresolved topic aborts the build with a
// missing-fragment error; no partial document is emitted.
func (s *Service) Build(ctx context.Context, location string) (*Build, error) {
	started := clock.Now()
	build := &Build{ID: idgen.New(), StartedAt: started}

	ctx, span := tracing.StartSpan(ctx, "build")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	document, anOutline, err := s.compose(ctx, location)
	if err != nil {
		progress.UpdateCtx(ctx, progress.Delta{Failed: 1})
		return nil, err
	}
	build.Outline = anOutline
	build.Document = document

	build.OutputURL = s.OutputURL(anOutline)
	if err = s.upload(ctx, build.OutputURL, document); err != nil {
		progress.UpdateCtx(ctx, progress.Delta{Failed: 1})
		return nil, err
	}
	build.Elapsed = clock.Now().Sub(started)
	progress.UpdateCtx(ctx, progress.Delta{Outlines: 1})
	return build, nil
}

// BuildAll builds each outline in turn, stopping at the first failure.
// Outlines referencing overlapping fragment subsets produce independent
// documents; fragment content is never consumed across builds.
func (s *Service) BuildAll(ctx context.Context, locations ...string) ([]*Build, error) {
	builds := make([]*Build, 0, len(locations))
	for _, location := range locations {
		build, err := s.Build(ctx, location)
		if err != nil {
			return builds, err
		}
		builds = append(builds, build)
	}
	return builds, nil
}

// Preview composes the outline at location entirely in memory, without
// writing any output.  It is used by the drift checker and by dry runs.
func (s *Service) Preview(ctx context.Context, location string) (*model.Document, *model.Outline, error) {
	return s.compose(ctx, location)
}

func (s *Service) compose(ctx context.Context, location string) (*model.Document, *model.Outline, error) {
	ctx, loadSpan := tracing.StartSpan(ctx, "outline.load")
	anOutline, err := s.outlines.Load(ctx, location)
	tracing.EndSpan(loadSpan, err)
	if err != nil {
		return nil, nil, err
	}

	sequence := composer.Sequence(anOutline)
	progress.UpdateCtx(ctx, progress.Delta{Fragments: len(sequence)})

	ctx, resolveSpan := tracing.StartSpan(ctx, "fragments.resolve")
	fragments := make([]*fragment.Fragment, 0, len(sequence))
	for _, topic := range sequence {
		frag, rErr := s.fragments.Resolve(ctx, topic)
		if rErr != nil {
			err = fmt.Errorf("outline %s: %w", anOutline.Name, rErr)
			tracing.EndSpan(resolveSpan, err)
			return nil, nil, err
		}
		fragments = append(fragments, frag)
		progress.UpdateCtx(ctx, progress.Delta{Resolved: 1})
	}
	tracing.EndSpan(resolveSpan, nil)

	ctx, composeSpan := tracing.StartSpan(ctx, "compose")
	document, err := s.composer.Compose(anOutline, fragments)
	tracing.EndSpan(composeSpan, err)
	if err != nil {
		return nil, nil, err
	}
	progress.UpdateCtx(ctx, progress.Delta{Composed: len(document.Sections)})
	return document, anOutline, nil
}

func (s *Service) upload(ctx context.Context, URL string, document *model.Document) error {
	ctx, span := tracing.StartSpan(ctx, "output.write")
	err := s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(document.Content()))
	tracing.EndSpan(span, err)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", URL, err)
	}
	return nil
}

// OutputURL returns the destination the outline's document is written to:
// the outline Output field when set, otherwise <outputBaseURL>/<name>.<ext>.
func (s *Service) OutputURL(anOutline *model.Outline) string {
	if anOutline.Output != "" {
		return anOutline.Output
	}
	ext := "rst"
	if anOutline.Format == model.FormatMarkdown {
		ext = "md"
	}
	return url.Join(s.outputBaseURL, anOutline.Name+"."+ext)
}

// Outlines exposes the outline DAO for refresh/upsert operations.
func (s *Service) Outlines() *outline.Service {
	return s.outlines
}

// Fragments exposes the fragment store.
func (s *Service) Fragments() *fragment.Service {
	return s.fragments
}

// Option customises the builder.
type Option func(*Service)

// WithOutlineService sets the outline DAO.
func WithOutlineService(svc *outline.Service) Option {
	return func(s *Service) { s.outlines = svc }
}

// WithFragmentService sets the fragment store.
func WithFragmentService(svc *fragment.Service) Option {
	return func(s *Service) { s.fragments = svc }
}

// WithComposer sets the composer.
func WithComposer(svc *composer.Service) Option {
	return func(s *Service) { s.composer = svc }
}

// WithFS sets the afs service used to write outputs.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithOutputBaseURL sets the base URL for derived output locations.
func WithOutputBaseURL(baseURL string) Option {
	return func(s *Service) { s.outputBaseURL = baseURL }
}

// New creates a builder service.
func New(opts ...Option) *Service {
	ret := &Service{
		fs:            afs.New(),
		outputBaseURL: ".",
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.outlines == nil {
		ret.outlines = outline.New()
	}
	if ret.fragments == nil {
		ret.fragments = fragment.New()
	}
	if ret.composer == nil {
		ret.composer = composer.New()
	}
	return ret
}
