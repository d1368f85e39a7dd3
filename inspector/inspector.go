// Package inspector joins the interface fetcher and the parser: it turns a
// canister address into the list of its methods.
package inspector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeebo/errs"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/icidkit/icid/app"
	"github.com/icidkit/icid/app/logger"
	"github.com/icidkit/icid/candid"
	"github.com/icidkit/icid/candid/candidfetch"
	"github.com/icidkit/icid/metric"
	"github.com/icidkit/icid/util/slice"
)

const CName = "inspector"

var log = logger.NewNamed(CName)

const defaultParallel = 4

type Config struct {
	// Parallel bounds concurrent fetches of InspectMany
	Parallel int `yaml:"parallel"`
}

type configSource interface {
	GetInspector() Config
}

type Inspector interface {
	// Inspect fetches and parses the interface of one canister.
	Inspect(ctx context.Context, address string) (*candid.Interface, error)
	// InspectMany inspects every distinct address concurrently. Results keep
	// the order of first appearance; the error combines all failures.
	InspectMany(ctx context.Context, addresses []string) ([]Result, error)
	// InFlight returns the number of inspections currently running.
	InFlight() int64
	app.Component
}

type Result struct {
	Address   string
	Interface *candid.Interface
	Err       error
}

func New(parseOpts ...candid.Option) Inspector {
	return &inspector{parseOpts: parseOpts}
}

type inspector struct {
	fetcher   candidfetch.Fetcher
	parseOpts []candid.Option
	parallel  int
	inFlight  atomic.Int64
	metric    metric.Metric
}

func (i *inspector) Init(a *app.App) (err error) {
	i.fetcher = a.MustComponent(candidfetch.CName).(candidfetch.Fetcher)
	i.parallel = defaultParallel
	if cs, ok := a.Component("config").(configSource); ok {
		if p := cs.GetInspector().Parallel; p > 0 {
			i.parallel = p
		}
	}
	if m, ok := a.Component(metric.CName).(metric.Metric); ok {
		i.metric = m
		gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "icid",
			Subsystem: "inspector",
			Name:      "in_flight",
			Help:      "Inspections currently running.",
		}, func() float64 {
			return float64(i.inFlight.Load())
		})
		if err = m.Registry().Register(gauge); err != nil {
			return err
		}
	}
	return nil
}

func (i *inspector) Name() (name string) {
	return CName
}

func (i *inspector) InFlight() int64 {
	return i.inFlight.Load()
}

func (i *inspector) Inspect(ctx context.Context, address string) (iface *candid.Interface, err error) {
	i.inFlight.Inc()
	st := time.Now()
	defer func() {
		i.inFlight.Dec()
		if i.metric != nil {
			i.metric.RequestLog(ctx, metric.Operation("inspect"), metric.CanisterId(address), metric.TotalDur(time.Since(st)))
		}
		if err != nil {
			log.DebugCtx(ctx, "inspect failed", metric.CanisterId(address), zap.Error(err))
		}
	}()
	text, err := i.fetcher.Fetch(ctx, address, "")
	if err != nil {
		return nil, err
	}
	if iface, err = candid.Parse(text, i.parseOpts...); err != nil {
		return nil, fmt.Errorf("parse interface: %w", err)
	}
	return iface, nil
}

func (i *inspector) InspectMany(ctx context.Context, addresses []string) ([]Result, error) {
	addresses = slice.Unique(addresses)
	results := make([]Result, len(addresses))
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		mError errs.Group
		limit  = make(chan struct{}, i.parallel)
	)
	for idx, addr := range addresses {
		results[idx].Address = addr
		select {
		case limit <- struct{}{}:
		case <-ctx.Done():
			results[idx].Err = ctx.Err()
			mu.Lock()
			mError.Add(fmt.Errorf("%s: %w", addr, ctx.Err()))
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(idx int, addr string) {
			defer func() {
				<-limit
				wg.Done()
			}()
			iface, err := i.Inspect(ctx, addr)
			results[idx].Interface = iface
			results[idx].Err = err
			if err != nil {
				mu.Lock()
				mError.Add(fmt.Errorf("%s: %w", addr, err))
				mu.Unlock()
			}
		}(idx, addr)
	}
	wg.Wait()
	return results, mError.Err()
}
