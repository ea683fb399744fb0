package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/elousi1010/quanlyveso-sub000/auth"
	"github.com/elousi1010/quanlyveso-sub000/authapi"
	"github.com/elousi1010/quanlyveso-sub000/internal/config"
	"github.com/elousi1010/quanlyveso-sub000/internal/logging"
	"github.com/elousi1010/quanlyveso-sub000/session"
	"github.com/elousi1010/quanlyveso-sub000/session/filerepo"
	"github.com/elousi1010/quanlyveso-sub000/session/redisrepo"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// app is one CLI invocation's wiring: a restored session store and the
// auth service driving it
type app struct {
	cfg     config.Config
	client  *authapi.Client
	store   *session.Store
	service *auth.Service
	profile *profileCache
	closers []func() error
}

func newApp(ctx context.Context) (*app, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, errors.Wrap(err, "loading env file")
	}
	cfg := settings{Config: config.New()}
	logging.Init(cfg.GetLogLevel(), cfg.GetEnv())
	return buildApp(ctx, cfg)
}

func buildApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg, profile: &profileCache{}}

	repo, err := a.openRepo(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store, err = session.NewStore(repo)
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := a.store.Restore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.client = authapi.New(cfg.GetAPIBaseURL(), authapi.WithTimeout(cfg.GetRequestTimeout()))
	a.service, err = auth.NewService(a.client, a.store, auth.WithInvalidators(a.profile))
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openRepo(cfg config.Config) (session.Repo, error) {
	switch cfg.GetStateStore() {
	case config.StateStoreFile:
		return filerepo.New(cfg.GetStateFile()), nil
	case config.StateStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		})
		a.closers = append(a.closers, rdb.Close)
		return redisrepo.New(rdb, cfg.GetKeyNamespace())
	default:
		return nil, fmt.Errorf("unknown state store %q (want %q or %q)", cfg.GetStateStore(), config.StateStoreFile, config.StateStoreRedis)
	}
}

// Profile returns the server-side profile, fetched once per session
func (a *app) Profile(ctx context.Context) (*authapi.Profile, error) {
	return a.profile.get(func() (*authapi.Profile, error) {
		ts := a.service.TokenSource(ctx, a.cfg.GetRefreshWindow())
		return a.client.Authenticated(ts).Profile(ctx)
	})
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		_ = closeFn()
	}
}

// profileCache holds the profile of the current session. The auth service
// invalidates it whenever the session ends.
type profileCache struct {
	mu      sync.Mutex
	profile *authapi.Profile
}

func (c *profileCache) get(fetch func() (*authapi.Profile, error)) (*authapi.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile != nil {
		return c.profile, nil
	}
	p, err := fetch()
	if err != nil {
		return nil, err
	}
	c.profile = p
	return p, nil
}

func (c *profileCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = nil
}
