package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/icidkit/icid/app"
	"github.com/icidkit/icid/app/logger"
	"github.com/icidkit/icid/candid/candidfetch"
	"github.com/icidkit/icid/identity"
	"github.com/icidkit/icid/inspector"
	"github.com/icidkit/icid/metric"
)

const CName = "config"

func NewFromFile(path string) (c *Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFromBytes(data)
}

func NewFromBytes(data []byte) (c *Config, err error) {
	c = &Config{}
	if err = yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return
}

type Config struct {
	Log       logger.Config      `yaml:"log"`
	Metric    metric.Config      `yaml:"metric"`
	Fetch     candidfetch.Config `yaml:"fetch"`
	Inspector inspector.Config   `yaml:"inspector"`
	Identity  identity.Config    `yaml:"identity"`
}

func (c *Config) Init(a *app.App) (err error) {
	logger.NewNamed(CName).Debug("config loaded",
		zap.String("endpoint", c.Fetch.Endpoint),
		zap.String("metricAddr", c.Metric.Addr),
		zap.Int("parallel", c.Inspector.Parallel),
	)
	return
}

func (c *Config) Name() (name string) {
	return CName
}

func (c *Config) GetMetric() metric.Config {
	return c.Metric
}

func (c *Config) GetFetch() candidfetch.Config {
	return c.Fetch
}

func (c *Config) GetInspector() inspector.Config {
	return c.Inspector
}

func (c *Config) GetIdentity() identity.Config {
	return c.Identity
}
