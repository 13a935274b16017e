package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/viant/afs"

	"github.com/shelfpub/decker/service/builder"
	"github.com/shelfpub/decker/tracing"
)

// DiffStats captures basic statistics about a unified-diff output.
type DiffStats struct {
	Added   int // number of lines starting with '+' (excluding +++)
	Removed int // number of lines starting with '-' (excluding ---)
	Hunks   int
}

// Drift describes the difference between an outline's written output and a
// fresh in-memory composition of the same outline.
type Drift struct {
	Outline   string
	OutputURL string
	Clean     bool
	Missing   bool // output file does not exist yet
	Patch     string
	Stats     DiffStats
}

// Service detects drift between composed documents and their written
// outputs.  Because composition is deterministic, any non-empty diff means
// either the fragments changed since the last build or the output was edited
// by hand.
type Service struct {
	builder *builder.Service
	fs      afs.Service
}

// Check recomposes the outline at location in memory and diffs the result
// against the current output file.  A missing fragment fails the check the
// same way it fails a build.
func (s *Service) Check(ctx context.Context, location string) (*Drift, error) {
	ctx, span := tracing.StartSpan(ctx, "verify.check")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	document, anOutline, err := s.builder.Preview(ctx, location)
	if err != nil {
		return nil, err
	}
	drift := &Drift{
		Outline:   anOutline.Name,
		OutputURL: s.builder.OutputURL(anOutline),
	}

	exists, err := s.fs.Exists(ctx, drift.OutputURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", drift.OutputURL, err)
	}
	var written []byte
	if exists {
		if written, err = s.fs.DownloadWithURL(ctx, drift.OutputURL); err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", drift.OutputURL, err)
		}
	} else {
		drift.Missing = true
	}

	fresh := document.Content()
	if exists && string(written) == string(fresh) {
		drift.Clean = true
		return drift, nil
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(written)),
		B:        difflib.SplitLines(string(fresh)),
		FromFile: drift.OutputURL + " (written)",
		ToFile:   drift.OutputURL + " (composed)",
		Context:  3,
	}
	patch, dErr := difflib.GetUnifiedDiffString(ud)
	if dErr != nil {
		err = fmt.Errorf("diff generation: %w", dErr)
		return nil, err
	}
	drift.Patch = patch
	drift.Stats = stats(patch)
	return drift, nil
}

func stats(patch string) DiffStats {
	var result DiffStats
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			result.Hunks++
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			result.Added++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			result.Removed++
		}
	}
	return result
}

// Option customises the verify service.
type Option func(*Service)

// WithFS sets the afs service used to read written outputs.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// New creates a verify service bound to the supplied builder.
func New(builderService *builder.Service, opts ...Option) *Service {
	ret := &Service{builder: builderService, fs: afs.New()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
