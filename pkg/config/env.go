package config

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// MonitorConfig drives the autostake log monitor. It is loaded from a flat
// KEY=value file kept next to the autostake deployment; blank lines and
// lines starting with # are ignored.
//
// Recognized keys:
//
//	TG_CHAT_ID        Telegram chat to deliver the report to
//	TG_TOKEN          Telegram bot token
//	BALANCE_ALERT     integer threshold in the base denom, 0 disables
//	ETH_CHAINS        space-separated chains using 18-decimal denoms
//	SLACK_WEBHOOK_URL optional Slack mirror of the report
//	PD_ROUTING_KEY    optional PagerDuty key for low-balance events
//	PD_GROUP          optional PagerDuty group
//	LOG_COMMAND       command to spawn for log input, stdin when empty
//	VERBOSITY         logrus level, info when unset or invalid
type MonitorConfig struct {
	Telegram     Telegram
	Slack        Slack
	Pagerduty    Pagerduty
	BalanceAlert int64
	EthChains    map[string]bool
	LogCommand   []string

	Log logrus.Ext1FieldLogger
}

func LoadMonitorConfig(file string) (*MonitorConfig, error) {
	env, err := godotenv.Read(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", file)
	}

	conf := &MonitorConfig{
		Telegram: Telegram{
			Token:  env["TG_TOKEN"],
			ChatID: env["TG_CHAT_ID"],
		},
		Slack: Slack{
			WebhookURL: env["SLACK_WEBHOOK_URL"],
		},
		Pagerduty: Pagerduty{
			RoutingKey: env["PD_ROUTING_KEY"],
			Group:      env["PD_GROUP"],
		},
		EthChains: map[string]bool{},
	}

	if raw := env["BALANCE_ALERT"]; raw != "" {
		conf.BalanceAlert, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid BALANCE_ALERT %q", raw)
		}
	}
	for _, chain := range strings.Fields(env["ETH_CHAINS"]) {
		conf.EthChains[strings.ToLower(chain)] = true
	}
	conf.LogCommand = strings.Fields(env["LOG_COMMAND"])

	logger := logrus.New()
	lvl, err := logrus.ParseLevel(env["VERBOSITY"])
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(lvl)
	}
	conf.Log = logger
	return conf, nil
}
