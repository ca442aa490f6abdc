package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-yaml"
	"github.com/sirupsen/logrus"
)

const (
	DefaultProbeTimeout = 5 * time.Second
	DefaultFetchTimeout = 10 * time.Second
	DefaultRetryMax     = 3
	DefaultRetryWait    = 2 * time.Second
	DefaultSampleSize   = 200
	DefaultTargetHours  = 24
	DefaultMinRange     = 1000
	DefaultMaxRange     = 50000
)

type Retry struct {
	Max  int           `yaml:"max"`
	Wait time.Duration `yaml:"wait"`
}

type Telegram struct {
	Token  string `yaml:"token"`
	ChatID string `yaml:"chat_id"`
}

func (t Telegram) Empty() bool {
	return t.Token == "" || t.ChatID == ""
}

type Slack struct {
	WebhookURL string `yaml:"webhook_url"`
	Channel    string `yaml:"channel"`
	Token      string `yaml:"token"`
}

func (s Slack) Empty() bool {
	return len(s.WebhookURL) == 0 && len(s.Channel) == 0 && len(s.Token) == 0
}

type Pagerduty struct {
	RoutingKey string `yaml:"routing_key"`
	Group      string `yaml:"group"`
}

func (p Pagerduty) Empty() bool {
	return p.RoutingKey == ""
}

// Config drives the upgrade ETA estimator. Endpoints are candidate RPC
// URLs probed in declared order; the first that answers a status request
// within ProbeTimeout serves the whole run.
type Config struct {
	Endpoints     []string      `yaml:"endpoints"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	Retry         Retry         `yaml:"retry"`
	SampleSize    int64         `yaml:"sample_size"`
	TargetHours   float64       `yaml:"target_hours"`
	MinRange      int64         `yaml:"min_range"`
	MaxRange      int64         `yaml:"max_range"`
	UpgradeName   string        `yaml:"upgrade_name"`
	UpgradeHeight int64         `yaml:"upgrade_height"`
	Telegram      Telegram      `yaml:"telegram"`
	Slack         Slack         `yaml:"slack"`
	Pagerduty     Pagerduty     `yaml:"pagerduty"`
	Verbosity     string        `yaml:"verbosity"`

	Log logrus.Ext1FieldLogger `yaml:"-"` // Log field is not serialized to YAML, used for logging
}

func (c *Config) applyDefaults() {
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = DefaultProbeTimeout
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.Retry.Max <= 0 {
		c.Retry.Max = DefaultRetryMax
	}
	if c.Retry.Wait <= 0 {
		c.Retry.Wait = DefaultRetryWait
	}
	if c.SampleSize <= 0 {
		c.SampleSize = DefaultSampleSize
	}
	if c.TargetHours <= 0 {
		c.TargetHours = DefaultTargetHours
	}
	if c.MinRange <= 0 {
		c.MinRange = DefaultMinRange
	}
	if c.MaxRange <= 0 {
		c.MaxRange = DefaultMaxRange
	}
}

func (c *Config) validate() error {
	if len(c.Endpoints) == 0 {
		return errors.New("no rpc endpoints configured")
	}
	if c.UpgradeHeight <= 0 {
		return errors.New("upgrade_height must be positive")
	}
	if c.MinRange > c.MaxRange {
		return errors.Errorf("min_range %d exceeds max_range %d", c.MinRange, c.MaxRange)
	}
	return nil
}

func LoadConfig(file string) (*Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	conf := &Config{}
	err = yaml.Unmarshal(data, conf)
	if err != nil {
		return nil, err
	}
	conf.applyDefaults()
	if err := conf.validate(); err != nil {
		return nil, err
	}
	logger := logrus.New()
	lvl, err := logrus.ParseLevel(conf.Verbosity)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(lvl)
	}

	conf.Log = logger
	return conf, nil
}
