//go:generate mockgen -destination mock_candidfetch/mock_candidfetch.go github.com/icidkit/icid/candid/candidfetch Fetcher
package candidfetch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/icidkit/icid/app"
	"github.com/icidkit/icid/app/logger"
	"github.com/icidkit/icid/metric"
	"github.com/icidkit/icid/principal"
	"github.com/icidkit/icid/util/errcode"
)

const CName = "candid.fetch"

var log = logger.NewNamed(CName)

const (
	DefaultEndpoint     = "https://ic-api.internetcomputer.org"
	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 4 << 20
)

var (
	errGroup = errcode.ErrGroup(500)

	ErrNetwork        = errGroup.Register(errors.New("network error"), 1)
	ErrNotFound       = errGroup.Register(errors.New("interface not found"), 2)
	ErrInvalidAddress = errGroup.Register(errors.New("invalid canister address"), 3)
)

type Config struct {
	Endpoint     string  `yaml:"endpoint"`
	TimeoutSec   int     `yaml:"timeoutSec"`
	RateLimit    float64 `yaml:"rateLimit"` // requests per second, 0 disables pacing
	Burst        int     `yaml:"burst"`
	MaxBodyBytes int64   `yaml:"maxBodyBytes"`
}

type configSource interface {
	GetFetch() Config
}

// Fetcher retrieves interface text of a canister. It makes exactly one
// request per call; retrying is up to the caller.
type Fetcher interface {
	// Fetch returns the interface text published by the canister at address.
	// An empty endpoint selects the configured one.
	Fetch(ctx context.Context, address, endpoint string) (string, error)
	app.Component
}

func New() Fetcher {
	return &fetcher{}
}

// NewWithConfig returns a ready fetcher for use outside of an app.
func NewWithConfig(conf Config) Fetcher {
	f := &fetcher{}
	f.configure(conf)
	return f
}

type fetcher struct {
	client   *http.Client
	conf     Config
	timeout  time.Duration
	limiter  *rate.Limiter
	duration *prometheus.HistogramVec
}

func (f *fetcher) Init(a *app.App) (err error) {
	var conf Config
	if cs, ok := a.Component("config").(configSource); ok {
		conf = cs.GetFetch()
	}
	f.configure(conf)
	if m, ok := a.Component(metric.CName).(metric.Metric); ok {
		f.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "icid",
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Interface fetch duration by result.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"})
		if err = m.Registry().Register(f.duration); err != nil {
			return err
		}
	}
	return nil
}

func (f *fetcher) Name() (name string) {
	return CName
}

func (f *fetcher) configure(conf Config) {
	if conf.Endpoint == "" {
		conf.Endpoint = DefaultEndpoint
	}
	conf.Endpoint = strings.TrimSuffix(conf.Endpoint, "/")
	if conf.MaxBodyBytes <= 0 {
		conf.MaxBodyBytes = defaultMaxBodyBytes
	}
	f.timeout = defaultTimeout
	if conf.TimeoutSec > 0 {
		f.timeout = time.Duration(conf.TimeoutSec) * time.Second
	}
	if conf.RateLimit > 0 {
		burst := conf.Burst
		if burst <= 0 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(conf.RateLimit), burst)
	}
	f.conf = conf
	f.client = &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
	}
}

func (f *fetcher) Fetch(ctx context.Context, address, endpoint string) (text string, err error) {
	st := time.Now()
	reqId := uuid.NewString()
	defer func() {
		res := result(err)
		if f.duration != nil {
			f.duration.WithLabelValues(res).Observe(time.Since(st).Seconds())
		}
		log.DebugCtx(ctx, "fetch",
			metric.RequestId(reqId),
			metric.CanisterId(address),
			metric.Result(res),
			metric.TotalDur(time.Since(st)),
		)
	}()

	p, err := principal.FromText(strings.TrimSpace(address))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if endpoint == "" {
		endpoint = f.conf.Endpoint
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	if f.limiter != nil {
		if err = f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limit: %w", ErrNetwork, err)
		}
	}

	url := endpoint + "/api/v3/canisters/" + p.String() + "/candid"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	req.Header.Set("Accept", "text/plain, application/json")
	req.Header.Set("X-Request-Id", reqId)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusGone:
		return "", fmt.Errorf("%w: %s has no interface (status %d)", ErrNotFound, p, resp.StatusCode)
	default:
		return "", fmt.Errorf("%w: unexpected status %d", ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.conf.MaxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}
	if int64(len(body)) > f.conf.MaxBodyBytes {
		return "", fmt.Errorf("%w: response exceeds %d bytes", ErrNetwork, f.conf.MaxBodyBytes)
	}

	if isJSON(resp.Header.Get("Content-Type")) {
		var payload struct {
			Candid string `json:"candid"`
		}
		if err = json.Unmarshal(body, &payload); err != nil {
			return "", fmt.Errorf("%w: decode response: %w", ErrNetwork, err)
		}
		text = payload.Candid
	} else {
		text = string(body)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s returned an empty interface", ErrNotFound, p)
	}
	return text, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	default:
		return "network"
	}
}
