package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Loaded is the artifact currently serving requests.
type Loaded struct {
	Artifact *Artifact
	ETag     string
	Source   string
	LoadedAt time.Time
}

// Store holds the active artifact and swaps it atomically on refresh.
type Store struct {
	source   Source
	fallback bool
	logger   *slog.Logger

	current atomic.Pointer[Loaded]
	mu      sync.Mutex
	now     func() time.Time
}

// NewStore creates a Store reading from source. With fallback enabled a
// failed initial load installs the builtin artifact instead of leaving the
// store empty.
func NewStore(source Source, fallback bool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		source:   source,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// Current returns the active artifact, or nil when none is loaded.
func (s *Store) Current() *Loaded {
	return s.current.Load()
}

// Load performs the initial fetch.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.fetchAndSwap(ctx, "")
	if err == nil {
		return nil
	}

	if !s.fallback {
		s.logger.Error("model artifact load failed", "source", s.source.Name(), "error", err)
		return err
	}

	s.logger.Warn("model artifact load failed, using builtin model", "source", s.source.Name(), "error", err)
	s.swap(Builtin(), "builtin", BuiltinSource{}.Name())
	return nil
}

// Refresh re-fetches the artifact. It reports whether a new artifact was
// installed. On any failure the previous artifact stays active.
func (s *Store) Refresh(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	etag := ""
	if cur := s.current.Load(); cur != nil && cur.Source == s.source.Name() {
		etag = cur.ETag
	}

	err := s.fetchAndSwap(ctx, etag)
	if errors.Is(err, ErrNotModified) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) fetchAndSwap(ctx context.Context, etag string) error {
	fetched, err := s.source.Fetch(ctx, etag)
	if err != nil {
		return err
	}

	a, err := Parse(fetched.Data)
	if err != nil {
		return fmt.Errorf("%s: %w", s.source.Name(), err)
	}

	s.swap(a, fetched.ETag, s.source.Name())
	return nil
}

func (s *Store) swap(a *Artifact, etag, source string) {
	prev := s.current.Swap(&Loaded{
		Artifact: a,
		ETag:     etag,
		Source:   source,
		LoadedAt: s.now(),
	})

	attrs := []any{"version", a.Version, "source", source}
	if prev != nil {
		attrs = append(attrs, "previous_version", prev.Artifact.Version)
	}
	s.logger.Info("model artifact loaded", attrs...)
}
