package identity

import (
	"crypto/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/icidkit/icid/app"
	"github.com/icidkit/icid/app/logger"
	"github.com/icidkit/icid/metric"
	"github.com/icidkit/icid/util/crypto"
)

const CName = "identity.deriver"

var log = logger.NewNamed(CName)

const defaultWordCount = 24

type Config struct {
	// Secp256k1Path overrides m/44'/223'/0'/0/0
	Secp256k1Path string `yaml:"secp256k1Path"`
	// WordCount of generated phrases, 24 when zero
	WordCount int `yaml:"wordCount"`
	// GeneratePhrase installs a crypto/rand source when no source was given
	GeneratePhrase bool `yaml:"generatePhrase"`
}

type configSource interface {
	GetIdentity() Config
}

type Option func(d *Deriver)

// WithEntropySource sets the source used when Derive gets an empty phrase.
func WithEntropySource(src EntropySource) Option {
	return func(d *Deriver) {
		d.source = src
	}
}

func WithSecp256k1Path(path crypto.DerivationPath) Option {
	return func(d *Deriver) {
		d.path = path
	}
}

// New returns a deriver. Without an entropy source it refuses to derive
// from an empty phrase.
func New(opts ...Option) *Deriver {
	d := &Deriver{path: crypto.DefaultSecp256k1Path}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deriver derives identities and supplies a phrase when the caller has none.
type Deriver struct {
	source  EntropySource
	path    crypto.DerivationPath
	counter *prometheus.CounterVec
}

func (d *Deriver) Init(a *app.App) (err error) {
	if cs, ok := a.Component("config").(configSource); ok {
		conf := cs.GetIdentity()
		if conf.Secp256k1Path != "" {
			if d.path, err = crypto.ParseDerivationPath(conf.Secp256k1Path); err != nil {
				return err
			}
		}
		if d.source == nil && conf.GeneratePhrase {
			wc := conf.WordCount
			if wc == 0 {
				wc = defaultWordCount
			}
			d.source = NewRandomSource(rand.Reader, wc)
		}
	}
	if m, ok := a.Component(metric.CName).(metric.Metric); ok {
		d.counter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "icid",
			Subsystem: "identity",
			Name:      "derivations_total",
			Help:      "Identity derivations by algorithm and outcome.",
		}, []string{"alg", "result"})
		if err = m.Registry().Register(d.counter); err != nil {
			return err
		}
	}
	return nil
}

func (d *Deriver) Name() (name string) {
	return CName
}

// Derive derives the identity of phrase. An empty phrase is replaced by one
// from the entropy source; without a source ErrMissingPhrase is returned.
// The phrase actually used is returned so a generated one is never lost.
func (d *Deriver) Derive(alg crypto.Algorithm, phrase crypto.Mnemonic) (data Data, used crypto.Mnemonic, err error) {
	kp, used, err := d.DeriveKeyPair(alg, phrase)
	if err != nil {
		return
	}
	data, err = kp.Data()
	return
}

func (d *Deriver) DeriveKeyPair(alg crypto.Algorithm, phrase crypto.Mnemonic) (kp KeyPair, used crypto.Mnemonic, err error) {
	st := time.Now()
	defer func() {
		d.observe(alg, err)
		if err != nil {
			log.Debug("derive failed", metric.Algorithm(alg.String()), zap.Error(err))
		} else {
			log.Debug("derived", metric.Algorithm(alg.String()), metric.TotalDur(time.Since(st)))
		}
	}()
	used = phrase.Normalized()
	if used == "" {
		if d.source == nil {
			return kp, "", ErrMissingPhrase
		}
		if used, err = d.source.Mnemonic(); err != nil {
			return kp, "", err
		}
	}
	kp, err = deriveKeyPair(alg, used, d.path)
	return
}

func (d *Deriver) observe(alg crypto.Algorithm, err error) {
	if d.counter == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	label := alg.String()
	if !alg.Valid() {
		label = "unknown"
	}
	d.counter.WithLabelValues(label, result).Inc()
}
