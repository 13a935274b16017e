package fragment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

// Fragment is an atomic block of slide content associated with one topic
// identifier.  The store does not interpret its body - it is carried as an
// opaque byte slice from source to composed document.
type Fragment struct {
	Topic   string    `json:"topic"`
	URL     string    `json:"url,omitempty"`
	Content []byte    `json:"content"`
	ModTime time.Time `json:"modTime,omitempty"`
}

// Clone returns a deep copy so that callers can hold fragments across
// refreshes without sharing backing arrays.
func (f *Fragment) Clone() *Fragment {
	if f == nil {
		return nil
	}
	clone := *f
	clone.Content = append([]byte(nil), f.Content...)
	return &clone
}

// Service resolves topic identifiers to fragment sources.  Each topic is
// probed as <root>/<topic><ext> across the configured roots and extensions,
// in order; the first existing asset wins.  Resolved fragments are cached
// until Refresh or Upsert.
type Service struct {
	fs         afs.Service
	roots      []string
	extensions []string
	options    []storage.Option
	cache      map[string]*Fragment
	mux        sync.RWMutex
}

// Resolve returns the fragment registered for topic, loading and caching it
// on first use.  A topic with no corresponding source yields a *NotFoundError.
func (s *Service) Resolve(ctx context.Context, topic string) (*Fragment, error) {
	if topic == "" {
		return nil, fmt.Errorf("topic was empty")
	}
	s.mux.RLock()
	cached, ok := s.cache[topic]
	s.mux.RUnlock()
	if ok {
		return cached.Clone(), nil
	}

	fragment, err := s.load(ctx, topic)
	if err != nil {
		return nil, err
	}
	s.mux.Lock()
	s.cache[topic] = fragment
	s.mux.Unlock()
	return fragment.Clone(), nil
}

func (s *Service) load(ctx context.Context, topic string) (*Fragment, error) {
	var searched []string
	for _, root := range s.roots {
		for _, ext := range s.extensions {
			URL := url.Join(root, topic+ext)
			exists, err := s.fs.Exists(ctx, URL, s.options...)
			if err != nil {
				return nil, fmt.Errorf("failed to check %s: %w", URL, err)
			}
			if !exists {
				searched = append(searched, URL)
				continue
			}
			data, err := s.fs.DownloadWithURL(ctx, URL, s.options...)
			if err != nil {
				return nil, fmt.Errorf("failed to download fragment %s: %w", URL, err)
			}
			fragment := &Fragment{Topic: topic, URL: URL, Content: data}
			if object, err := s.fs.Object(ctx, URL, s.options...); err == nil {
				fragment.ModTime = object.ModTime()
			}
			return fragment, nil
		}
	}
	return nil, &NotFoundError{Topic: topic, Searched: searched}
}

// Refresh discards the cached copy of topic; the next Resolve reloads it from
// its source.  Refreshing an uncached topic is a no-op.
func (s *Service) Refresh(topic string) {
	s.mux.Lock()
	delete(s.cache, topic)
	s.mux.Unlock()
}

// Upsert stores fragment under its topic, replacing any cached copy.  It is
// used by authoring tools to make in-flight edits visible without a disk
// round-trip.
func (s *Service) Upsert(fragment *Fragment) {
	if fragment == nil || fragment.Topic == "" {
		return
	}
	s.mux.Lock()
	s.cache[fragment.Topic] = fragment.Clone()
	s.mux.Unlock()
}

// Roots returns the configured fragment root URLs.
func (s *Service) Roots() []string {
	return s.roots
}

// Option customises the fragment service.
type Option func(*Service)

// WithRoots sets the base URLs probed for fragment sources.
func WithRoots(roots ...string) Option {
	return func(s *Service) {
		s.roots = roots
	}
}

// WithExtensions sets the file extensions probed per root.
func WithExtensions(extensions ...string) Option {
	return func(s *Service) {
		s.extensions = extensions
	}
}

// WithFS sets the backing afs service.
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithFsOptions sets storage options passed to every afs call.
func WithFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.options = options
	}
}

// New creates a fragment service.  Unless overridden it probes the current
// working directory for .rst and .md sources.
func New(opts ...Option) *Service {
	ret := &Service{
		fs:         afs.New(),
		roots:      []string{"."},
		extensions: []string{".rst", ".md"},
		cache:      make(map[string]*Fragment),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
