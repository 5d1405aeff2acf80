package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/evcharge/config"
	"github.com/kilianp07/evcharge/core/catalog"
	"github.com/kilianp07/evcharge/core/currency"
	coremetrics "github.com/kilianp07/evcharge/core/metrics"
	coremon "github.com/kilianp07/evcharge/core/monitoring"
	"github.com/kilianp07/evcharge/core/planner"
	"github.com/kilianp07/evcharge/core/tariff"
	"github.com/kilianp07/evcharge/infra/journal"
	"github.com/kilianp07/evcharge/infra/logger"
	"github.com/kilianp07/evcharge/infra/metrics"
	inframon "github.com/kilianp07/evcharge/infra/monitoring"
	"github.com/kilianp07/evcharge/infra/mqtt"
	"github.com/kilianp07/evcharge/infra/ocm"
	"github.com/kilianp07/evcharge/infra/ors"
	"github.com/kilianp07/evcharge/infra/ratecache"
	"github.com/kilianp07/evcharge/infra/rates"
	"github.com/kilianp07/evcharge/internal/eventbus"
)

// Service wires the pricing core to its collaborators, sinks and journal.
type Service struct {
	cfg      *config.Config
	data     catalog.Data
	resolver *tariff.Resolver
	rates    *currency.Cache
	planner  *planner.Planner
	geocoder planner.Geocoder

	bus       *eventbus.Bus
	sink      coremetrics.MetricsSink
	store     journal.Store
	publisher *mqtt.Publisher
	redis     *ratecache.RedisStore
	log       logger.Logger

	startOnce sync.Once
	cancel    context.CancelFunc
	done      []<-chan struct{}
}

// Option overrides a collaborator built from the configuration.
type Option func(*deps)

type deps struct {
	source    currency.Source
	directory planner.Directory
	geocoder  planner.Geocoder
	router    planner.Router
	sink      coremetrics.MetricsSink
	store     journal.Store
	log       logger.Logger
}

// WithRateSource replaces the Frankfurter client.
func WithRateSource(src currency.Source) Option { return func(d *deps) { d.source = src } }

// WithDirectory replaces the OpenChargeMap client.
func WithDirectory(dir planner.Directory) Option { return func(d *deps) { d.directory = dir } }

// WithRouting replaces the OpenRouteService clients.
func WithRouting(g planner.Geocoder, r planner.Router) Option {
	return func(d *deps) { d.geocoder, d.router = g, r }
}

// WithMetricsSink replaces the sinks listed in metrics.sinks.
func WithMetricsSink(s coremetrics.MetricsSink) Option { return func(d *deps) { d.sink = s } }

// WithJournal replaces the configured journal store.
func WithJournal(s journal.Store) Option { return func(d *deps) { d.store = s } }

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option { return func(d *deps) { d.log = l } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	d := deps{}
	for _, opt := range opts {
		opt(&d)
	}
	logg := d.log
	if logg == nil {
		logg = logger.New("service")
	}

	data := catalog.Default()
	if cfg.Catalog.Path != "" {
		loaded, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		data = loaded
	}
	resolver, err := data.Resolver()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if _, ok := resolver.ByName(cfg.Planner.ReferenceTariff); !ok {
		return nil, fmt.Errorf("planner: unknown reference tariff %q", cfg.Planner.ReferenceTariff)
	}

	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink := d.sink
	if sink == nil {
		sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
	}

	store := d.store
	if store == nil {
		store, err = journal.Open(cfg.Journal)
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
	}

	svc := &Service{
		cfg:      cfg,
		data:     data,
		resolver: resolver,
		bus:      eventbus.New(),
		sink:     sink,
		store:    store,
		log:      logg,
	}

	src := d.source
	if src == nil {
		src = rates.NewClient(cfg.Rates.URL, cfg.Rates.Timeout())
	}
	cacheOpts := []currency.CacheOption{currency.WithTTL(cfg.Rates.TTL()), currency.WithLogger(logger.New("rates"))}
	if cfg.Rates.Redis.Address != "" {
		svc.redis = ratecache.NewRedisStore(cfg.Rates.Redis.Address, cfg.Rates.Redis.Key)
		cacheOpts = append(cacheOpts, currency.WithSnapshotStore(svc.redis))
	}
	svc.rates = currency.NewCache(src, cacheOpts...)
	svc.rates.OnRefresh = svc.ratesRefreshed

	dir := d.directory
	if dir == nil {
		dir = ocm.NewClient(cfg.Directory.URL, cfg.Directory.APIKey, cfg.Directory.CountryCode, cfg.Directory.Timeout())
	}
	geo, router := d.geocoder, d.router
	if geo == nil || router == nil {
		client := ors.NewClient(cfg.Routing.URL, cfg.Routing.APIKey, cfg.Routing.Country, cfg.Routing.Timeout())
		geo, router = client, client
	}
	svc.geocoder = geo
	svc.planner = planner.New(dir, resolver,
		planner.WithOptions(cfg.Planner.Options()),
		planner.WithRouting(geo, router),
		planner.WithLogger(logger.New("planner")),
	)

	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			svc.closeStore()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Start launches the background consumers of the event bus. It is safe to
// call more than once.
func (s *Service) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
		s.done = append(s.done, metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics")))
		if s.store != nil {
			s.done = append(s.done, journal.StartWriter(ctx, s.bus, s.store, logger.New("journal")))
		}
		if s.publisher != nil {
			s.done = append(s.done, s.publisher.Start(ctx, s.bus))
		}
	})
}

// Run serves handler on the API address, and /metrics when a Prometheus
// port is configured, until ctx is canceled.
func (s *Service) Run(ctx context.Context, handler http.Handler) error {
	s.Start(ctx)
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, port, nil, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	srv := &http.Server{Addr: s.cfg.API.Address, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("API listening on %s", s.cfg.API.Address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close drains the event bus and releases the journal, MQTT and Redis
// connections.
func (s *Service) Close() error {
	s.bus.Close()
	for _, d := range s.done {
		<-d
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	errs = append(errs, s.closeStore())
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}

func (s *Service) closeStore() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
