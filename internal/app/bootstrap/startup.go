// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/metacode22/study-somoim/internal/app/backend"
	"github.com/metacode22/study-somoim/internal/app/store/oauthstate"
	"github.com/metacode22/study-somoim/internal/app/system/eligibility"
	"github.com/metacode22/study-somoim/internal/app/system/querycache"
	"github.com/metacode22/study-somoim/internal/app/system/ratelimit"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/workers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// services are the process-wide pieces built once in Startup and shared by
// BuildHandler and Shutdown.
type services struct {
	Registry *prometheus.Registry
	API      *backend.Client
	Cache    *querycache.Cache
	Janitor  *workers.Janitor
	Loc      *time.Location

	// Nil when the configured limit is zero.
	APILimit   *ratelimit.Limiter
	LoginLimit *ratelimit.Limiter
}

var (
	svcMu sync.Mutex
	svc   *services
)

func currentServices() *services {
	svcMu.Lock()
	defer svcMu.Unlock()
	return svc
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: timeouts,
// metrics, the backend client, the query cache and its janitor.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	s, err := newServices(appCfg, deps, logger)
	if err != nil {
		return err
	}
	s.Janitor.Start()

	svcMu.Lock()
	svc = s
	svcMu.Unlock()
	return nil
}

func newServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*services, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	apiMetrics := &backend.Metrics{}
	apiMetrics.Register(reg)
	api, err := backend.New(appCfg.BackendBaseURL,
		backend.WithHTTPClient(&http.Client{Transport: backend.NewTransport(appCfg.BackendMaxConns)}),
		backend.WithLogger(logger.Named("backend")),
		backend.WithMetrics(apiMetrics),
	)
	if err != nil {
		return nil, err
	}

	cacheMetrics := &querycache.Metrics{}
	cacheMetrics.Register(reg)
	cache := querycache.New(appCfg.CacheTTL, querycache.WithMetrics(cacheMetrics))

	var states workers.ExpiredCleaner
	if deps.MongoDatabase != nil {
		states = oauthstate.New(deps.MongoDatabase)
	}

	s := &services{
		Registry:   reg,
		API:        api,
		Cache:      cache,
		Loc:        appCfg.Location(),
		APILimit:   perMinute(appCfg.APIRateLimit),
		LoginLimit: perMinute(appCfg.LoginRateLimit),
	}
	sweep := workers.Sweepers{cache}
	if s.APILimit != nil {
		sweep = append(sweep, s.APILimit)
	}
	if s.LoginLimit != nil {
		sweep = append(sweep, s.LoginLimit)
	}
	s.Janitor = workers.NewJanitor(sweep, states, logger.Named("janitor"), appCfg.CacheSweepInterval)
	return s, nil
}

func perMinute(n int) *ratelimit.Limiter {
	if n <= 0 {
		return nil
	}
	return ratelimit.New(n, time.Minute)
}

// limit returns l's middleware, or a pass-through when l is nil.
func limit(l *ratelimit.Limiter, key ratelimit.KeyFunc, onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return l.Middleware(key, onLimit)
}

// newEligibility builds the validator with its outcome counter on the
// shared registry.
func newEligibility(s *services, logger *zap.Logger) *eligibility.Validator {
	m := &eligibility.Metrics{}
	m.Register(s.Registry)
	return eligibility.New(s.API, logger.Named("eligibility"), m)
}
