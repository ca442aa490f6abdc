package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/numbergroup/cosmos-monitor/pkg/alert"
	"github.com/numbergroup/cosmos-monitor/pkg/config"
	"github.com/numbergroup/cosmos-monitor/pkg/eta"
	"github.com/numbergroup/cosmos-monitor/pkg/rpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	confFile := flag.String("conf", "./config.yaml", "path to the configuration file")

	flag.Parse()

	conf, err := config.LoadConfig(*confFile)
	if err != nil {
		print(err.Error())
		os.Exit(1)
	}

	client, err := rpc.SelectEndpoint(ctx, conf)
	if err != nil {
		conf.Log.WithError(err).Error("no rpc endpoint reachable")
		os.Exit(1)
	}

	res, err := eta.Estimate(ctx, client, conf)
	if err != nil {
		conf.Log.WithError(err).Error("failed to estimate upgrade eta")
		if !conf.Pagerduty.Empty() {
			pdErr := alert.NewPagerduty(conf.Pagerduty).Raise(ctx, alert.Message{
				Message:  err.Error(),
				Severity: alert.Error,
				Name:     conf.UpgradeName,
			})
			if pdErr != nil {
				conf.Log.WithError(pdErr).Error("failed to raise alert")
			}
		}
		os.Exit(1)
	}

	fmt.Println(res.String())

	if !conf.Telegram.Empty() {
		tg := alert.NewTelegram(conf.Telegram, conf.Log)
		if err := tg.Raise(ctx, alert.Message{
			Message:  res.HTML(),
			Severity: alert.Info,
			Name:     conf.UpgradeName,
		}); err != nil {
			conf.Log.WithError(err).Error("failed to deliver telegram notification")
		}
	}
	if !conf.Slack.Empty() {
		sl := alert.NewSlack(conf.Slack, conf.Log)
		if err := sl.Raise(ctx, alert.Message{
			Message:  res.String(),
			Severity: alert.Info,
			Name:     conf.UpgradeName,
		}); err != nil {
			conf.Log.WithError(err).Error("failed to deliver slack notification")
		}
	}
}
