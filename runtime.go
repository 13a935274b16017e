package decker

import (
	"context"
	"fmt"

	"github.com/shelfpub/decker/model"
	"github.com/shelfpub/decker/service/builder"
	"github.com/shelfpub/decker/service/composer"
	"github.com/shelfpub/decker/service/dao/fragment"
	"github.com/shelfpub/decker/service/dao/outline"
	"github.com/shelfpub/decker/service/publisher"
	"github.com/shelfpub/decker/service/verify"
)

// Runtime represents a document assembly runtime
type Runtime struct {
	outlineDAO  *outline.Service
	fragmentDAO *fragment.Service
	composer    *composer.Service
	builder     *builder.Service
	verifier    *verify.Service
	publisher   *publisher.Service
}

// LoadOutline loads an outline
func (r *Runtime) LoadOutline(ctx context.Context, location string) (*model.Outline, error) {
	return r.outlineDAO.Load(ctx, location)
}

// DecodeYAMLOutline decodes an outline definition
func (r *Runtime) DecodeYAMLOutline(data []byte) (*model.Outline, error) {
	return r.outlineDAO.DecodeYAML(data)
}

// ---------------------------------------------------------------------------
// Outline hot-swap helpers
// ---------------------------------------------------------------------------

// RefreshOutline discards any cached copy of the outline definition located
// at the given URL/location. The next LoadOutline call will reload the file
// via the configured meta-service (i.e. one extra disk/cloud round-trip).
func (r *Runtime) RefreshOutline(location string) error {
	if r == nil || r.outlineDAO == nil {
		return fmt.Errorf("runtime not fully initialised – outlineDAO missing")
	}
	r.outlineDAO.Refresh(location)
	return nil
}

// UpsertOutline parses the supplied YAML bytes and stores the resulting
// outline in the in-memory cache under the specified location. When data is
// nil the call falls back to RefreshOutline, causing a lazy reload on next
// use.
func (r *Runtime) UpsertOutline(location string, data []byte) error {
	if r == nil || r.outlineDAO == nil {
		return fmt.Errorf("runtime not fully initialised – outlineDAO missing")
	}
	if data == nil {
		return r.RefreshOutline(location)
	}
	anOutline, err := r.outlineDAO.DecodeYAML(data)
	if err != nil {
		return fmt.Errorf("failed to decode outline YAML: %w", err)
	}
	if anOutline.Source == nil {
		anOutline.Source = &model.Source{URL: location}
	} else {
		anOutline.Source.URL = location
	}
	r.outlineDAO.Upsert(location, anOutline)
	return nil
}

// ---------------------------------------------------------------------------
// Fragment helpers
// ---------------------------------------------------------------------------

// ResolveFragment locates and returns the fragment for a topic.
func (r *Runtime) ResolveFragment(ctx context.Context, topic string) (*fragment.Fragment, error) {
	return r.fragmentDAO.Resolve(ctx, topic)
}

// RefreshFragment discards any cached copy of the topic's fragment so the
// next resolution re-reads it from storage.
func (r *Runtime) RefreshFragment(topic string) error {
	if r == nil || r.fragmentDAO == nil {
		return fmt.Errorf("runtime not fully initialised – fragmentDAO missing")
	}
	r.fragmentDAO.Refresh(topic)
	return nil
}

// UpsertFragment stores a fragment in the in-memory cache, bypassing storage.
func (r *Runtime) UpsertFragment(aFragment *fragment.Fragment) error {
	if r == nil || r.fragmentDAO == nil {
		return fmt.Errorf("runtime not fully initialised – fragmentDAO missing")
	}
	r.fragmentDAO.Upsert(aFragment)
	return nil
}

// ---------------------------------------------------------------------------
// Assembly operations
// ---------------------------------------------------------------------------

// Build composes the outline at the given location and writes the document
// to its output URL.
func (r *Runtime) Build(ctx context.Context, location string) (*builder.Build, error) {
	return r.builder.Build(ctx, location)
}

// BuildAll builds each outline in order, stopping at the first failure.
func (r *Runtime) BuildAll(ctx context.Context, locations ...string) ([]*builder.Build, error) {
	return r.builder.BuildAll(ctx, locations...)
}

// Preview composes the outline without writing any output.
func (r *Runtime) Preview(ctx context.Context, location string) (*model.Document, *model.Outline, error) {
	return r.builder.Preview(ctx, location)
}

// Check reports drift between the written document and a fresh composition.
func (r *Runtime) Check(ctx context.Context, location string) (*verify.Drift, error) {
	return r.verifier.Check(ctx, location)
}

// Publish copies built deck assets to the versioned publish location.
func (r *Runtime) Publish(ctx context.Context, request *publisher.Request) (*publisher.Result, error) {
	return r.publisher.Publish(ctx, request)
}

// OutputURL returns the location a built outline document is written to.
func (r *Runtime) OutputURL(anOutline *model.Outline) string {
	return r.builder.OutputURL(anOutline)
}

// Outlines returns the outline DAO
func (r *Runtime) Outlines() *outline.Service {
	return r.outlineDAO
}

// Fragments returns the fragment DAO
func (r *Runtime) Fragments() *fragment.Service {
	return r.fragmentDAO
}

// Builder returns the builder service
func (r *Runtime) Builder() *builder.Service {
	return r.builder
}

// Publisher returns the publisher service
func (r *Runtime) Publisher() *publisher.Service {
	return r.publisher
}
