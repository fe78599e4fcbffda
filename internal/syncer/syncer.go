// Package syncer drives the update pass: each configured extension runs
// the lookup → resolve → compare → install protocol on a bounded worker
// pool, and orphan cleanup runs once after every worker has finished.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/crxup/crxup/internal/config"
	"github.com/crxup/crxup/internal/installstore"
	"github.com/crxup/crxup/internal/webstore"
)

// Resolver is the remote side of the protocol: version discovery and
// package fetch. *webstore.Client implements it.
type Resolver interface {
	ResolveLatest(ctx context.Context, id string) (version, fetchURL string, err error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// Syncer runs the update protocol for one browser configuration.
type Syncer struct {
	cfg    *config.Config
	store  installstore.Store
	remote Resolver
	log    zerolog.Logger
	dryRun bool
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the logger used for per-decision output.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Syncer) { s.log = log }
}

// WithDryRun makes the syncer log decisions without touching the store.
func WithDryRun(dryRun bool) Option {
	return func(s *Syncer) { s.dryRun = dryRun }
}

// New creates a Syncer over the given store and resolver.
func New(cfg *config.Config, store installstore.Store, remote Resolver, opts ...Option) *Syncer {
	s := &Syncer{
		cfg:    cfg,
		store:  store,
		remote: remote,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes every configured extension on a worker pool of
// cfg.Threads goroutines, then reconciles orphans. The first fatal error
// cancels outstanding workers and suppresses the orphan pass: orphan
// detection scans the directory, so it must only ever see the state left
// by a fully completed update pass.
func (s *Syncer) Run(ctx context.Context) error {
	ids := s.cfg.Extensions
	s.log.Info().Str("branding", s.cfg.Branding).Int("count", len(ids)).Msg("processing extensions")

	p := pool.New().
		WithMaxGoroutines(s.cfg.Threads).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for _, id := range ids {
		id := id // per-iteration copy: the go directive predates Go 1.22 loopvar semantics
		p.Go(func(ctx context.Context) error {
			return s.Process(ctx, id)
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}

	if err := s.RemoveOrphans(); err != nil {
		return err
	}

	s.log.Info().Int("count", len(ids)).Msg("finished update pass")
	return nil
}

// Process runs the per-extension protocol: read the installed version,
// resolve the latest published one, and install only when they differ.
// A not-downloadable extension is skipped; any other resolve or fetch
// failure is returned for the caller to abort the run.
func (s *Syncer) Process(ctx context.Context, id string) error {
	installed := s.store.InstalledVersion(id)

	latest, fetchURL, err := s.remote.ResolveLatest(ctx, id)
	if errors.Is(err, webstore.ErrNotFound) {
		s.log.Warn().Str("id", id).Msg("extension is not downloadable")
		return nil
	}
	if err != nil {
		return err
	}

	outdated := installed != latest
	s.log.Debug().
		Str("id", id).
		Str("installed", installed).
		Str("latest", latest).
		Bool("outdated", outdated).
		Msg("checked extension")

	if !outdated {
		return nil
	}

	s.log.Info().Str("id", id).Str("version", latest).Msg("updating extension")
	if s.dryRun {
		return nil
	}

	data, err := s.remote.Download(ctx, fetchURL)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", id, err)
	}
	if err := s.store.Install(id, latest, data); err != nil {
		return fmt.Errorf("installing %s: %w", id, err)
	}
	return nil
}

// RemoveOrphans deletes installed extensions whose IDs are no longer
// configured. Removal is opt-in and best-effort: a failed removal is
// logged and the remaining orphans are still processed.
func (s *Syncer) RemoveOrphans() error {
	if !s.cfg.RemoveOrphans {
		s.log.Info().Msg("skipping orphan removal")
		return nil
	}

	installed, err := s.store.List()
	if err != nil {
		return fmt.Errorf("listing installed extensions: %w", err)
	}

	configured := make(map[string]struct{}, len(s.cfg.Extensions))
	for _, id := range s.cfg.Extensions {
		configured[id] = struct{}{}
	}

	var orphans []string
	for _, id := range installed {
		if _, ok := configured[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) == 0 {
		return nil
	}
	sort.Strings(orphans)

	s.log.Info().Strs("ids", orphans).Msg("removing orphans")
	for _, id := range orphans {
		if s.dryRun {
			continue
		}
		if err := s.store.Remove(id); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("failed to remove orphan")
		}
	}
	return nil
}
