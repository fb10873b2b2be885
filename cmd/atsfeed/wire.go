package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/atsfeed/internal/adapter"
	"github.com/amishk599/atsfeed/internal/cache"
	"github.com/amishk599/atsfeed/internal/config"
	"github.com/amishk599/atsfeed/internal/delivery"
	"github.com/amishk599/atsfeed/internal/filter"
	"github.com/amishk599/atsfeed/internal/httpclient"
	"github.com/amishk599/atsfeed/internal/model"
	"github.com/amishk599/atsfeed/internal/notifier"
	"github.com/amishk599/atsfeed/internal/pipeline"
	"github.com/amishk599/atsfeed/internal/ratelimit"
	"github.com/amishk599/atsfeed/internal/retry"
	"github.com/amishk599/atsfeed/internal/router"
	"github.com/amishk599/atsfeed/internal/seed"
	"github.com/amishk599/atsfeed/internal/sink"
)

const careersCachePrefix = "atsfeed:careers"

// app holds the collaborators shared by every subcommand. All outbound clients
// share one host limiter.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	limiter *ratelimit.HostLimiter
	store   cache.Store
	closers []func()
}

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		limiter: ratelimit.NewHostLimiter(cfg.HTTP.RequestDelay),
	}
	a.store = a.careersCache()
	return a
}

// Close releases sinks and caches in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) policy() retry.Policy {
	return retry.Policy{
		MaxAttempts: a.cfg.HTTP.MaxRetries,
		BaseDelay:   a.cfg.HTTP.BaseDelay,
		MaxDelay:    a.cfg.HTTP.MaxDelay,
	}
}

func (a *app) client(timeout time.Duration, headers map[string]string) *httpclient.Client {
	return httpclient.New(nil, httpclient.Options{
		Timeout:   timeout,
		UserAgent: a.cfg.HTTP.UserAgent,
		Headers:   headers,
		Policy:    a.policy(),
		Limiter:   a.limiter,
	}, a.logger)
}

func (a *app) careersCache() cache.Store {
	if a.cfg.Cache.RedisURL == "" {
		return cache.NewMemory(a.cfg.Cache.TTL)
	}
	rc, err := cache.NewRedis(a.cfg.Cache.RedisURL, careersCachePrefix, a.cfg.Cache.TTL)
	if err != nil {
		a.logger.Warn("redis unavailable, using in-memory careers cache", "error", err)
		return cache.NewMemory(a.cfg.Cache.TTL)
	}
	a.closers = append(a.closers, func() { _ = rc.Close() })
	return rc
}

func (a *app) detector() *adapter.Detector {
	return adapter.NewDetector(a.client(a.cfg.HTTP.ProbeTimeout, nil), a.store, a.logger)
}

// router registers one extractor per supported ATS.
func (a *app) router() *router.Router {
	api := a.client(a.cfg.HTTP.APITimeout, nil)
	probe := a.client(a.cfg.HTTP.ProbeTimeout, nil)

	return router.New(a.logger).
		Register(model.ATSGreenhouse, adapter.NewGreenhouseAdapter(api, a.cfg.Providers.GreenhouseContent)).
		Register(model.ATSLever, adapter.NewLeverAdapter(api, a.logger)).
		Register(model.ATSAshby, adapter.NewAshbyAdapter(api, adapter.ParseAshbyAPI(a.cfg.Providers.AshbyAPI), a.logger)).
		Register(model.ATSWorkday, adapter.NewWorkdayAdapter(api)).
		Register(model.ATSGeneric, adapter.NewGenericAdapter(probe, a.detector(), nil, a.logger))
}

// source picks inline companies, then the seed file, then the remote endpoint.
func (a *app) source() model.CompanySource {
	switch {
	case len(a.cfg.Source.Companies) > 0:
		return seed.Static(a.cfg.Source.Companies)
	case a.cfg.Source.SeedFile != "":
		return seed.NewFileSource(a.cfg.Source.SeedFile, a.logger)
	default:
		c := a.client(a.cfg.HTTP.APITimeout, sink.AuthHeaders(a.cfg.Sink.Secret))
		return seed.NewRemoteSource(a.cfg.Source.CompaniesURL, c, a.logger)
	}
}

func (a *app) filter() model.JobFilter {
	return filter.All{
		filter.NewWindow(a.cfg.Filters.Lookback()),
		filter.NewKeywords(a.cfg.Filters.TitleKeywords, a.cfg.Filters.Locations),
	}
}

// sink opens the configured destination. The recorder is nil for sinks that
// cannot persist run reports.
func (a *app) sink(ctx context.Context) (model.JobSink, model.RunRecorder, error) {
	switch a.cfg.Sink.Type {
	case config.SinkHTTP:
		c := a.client(a.cfg.HTTP.SinkTimeout, sink.AuthHeaders(a.cfg.Sink.Secret))
		return sink.NewHTTPSink(a.cfg.Sink.IngestURL, c), nil, nil
	case config.SinkSQLite:
		s, err := sink.NewSQLiteSink(a.cfg.Sink.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		return s, s, nil
	case config.SinkPostgres:
		s, err := sink.NewPostgresSink(ctx, a.cfg.Sink.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, s, nil
	case config.SinkLog:
		return sink.NewLogSink(a.logger), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown sink %q", a.cfg.Sink.Type)
	}
}

// notifier returns nil when no run notifications are configured.
func (a *app) notifier() model.RunNotifier {
	switch a.cfg.Notification.Type {
	case "slack":
		a.logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(a.cfg.Notification.WebhookURL, a.client(a.cfg.HTTP.APITimeout, nil), a.logger)
	case "log":
		return notifier.NewLogNotifier(a.logger)
	default:
		return nil
	}
}

func (a *app) runner(ctx context.Context) (*pipeline.Runner, error) {
	s, recorder, err := a.sink(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s sink: %w", a.cfg.Sink.Type, err)
	}

	var opts []pipeline.Option
	if recorder != nil {
		opts = append(opts, pipeline.WithRecorder(recorder))
	}
	if n := a.notifier(); n != nil {
		opts = append(opts, pipeline.WithNotifier(n))
	}

	return pipeline.NewRunner(
		a.source(),
		a.router(),
		a.filter(),
		delivery.NewDeliverer(s, a.cfg.Sink.BatchSize, a.logger),
		a.logger,
		opts...,
	), nil
}
