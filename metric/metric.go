package metric

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/icidkit/icid/app"
	"github.com/icidkit/icid/app/logger"
)

const CName = "metric"

var log = logger.NewNamed(CName)

func New() Metric {
	return new(metric)
}

type Metric interface {
	Registry() *prometheus.Registry
	// RequestLog writes one line per finished operation to the "opLog" logger
	RequestLog(ctx context.Context, fields ...zap.Field)
	app.ComponentRunnable
}

type Config struct {
	Addr string `yaml:"addr"`
}

type configSource interface {
	GetMetric() Config
}

type metric struct {
	registry *prometheus.Registry
	opLog    logger.CtxLogger
	config   Config
	server   *http.Server
	appName  string
	version  string
}

func (m *metric) Init(a *app.App) (err error) {
	m.registry = prometheus.NewRegistry()
	m.config = a.MustComponent("config").(configSource).GetMetric()
	m.opLog = logger.NewNamed("opLog")
	m.appName = a.Name()
	m.version = a.Version()
	return nil
}

func (m *metric) Name() string {
	return CName
}

func (m *metric) Run(ctx context.Context) (err error) {
	if err = m.registry.Register(collectors.NewBuildInfoCollector()); err != nil {
		return err
	}
	if err = m.registry.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	if err = m.registry.Register(newVersionsCollector(m.appName, m.version)); err != nil {
		return err
	}
	if m.config.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
		m.server = &http.Server{Addr: m.config.Addr, Handler: mux}
		var errCh = make(chan error, 1)
		go func() {
			errCh <- m.server.ListenAndServe()
		}()
		select {
		case err = <-errCh:
		case <-time.After(time.Second / 5):
			log.Info("metrics endpoint started", zap.String("addr", m.config.Addr))
		}
	}
	return
}

func (m *metric) Registry() *prometheus.Registry {
	return m.registry
}

func (m *metric) Close(ctx context.Context) (err error) {
	if m.server != nil {
		if err = m.server.Shutdown(ctx); errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}
	return
}
