package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/numbergroup/cosmos-monitor/pkg/alert"
	"github.com/numbergroup/cosmos-monitor/pkg/autostake"
	"github.com/numbergroup/cosmos-monitor/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	confFile := flag.String("conf", "./monitor.env", "path to the configuration file")

	flag.Parse()

	conf, err := config.LoadMonitorConfig(*confFile)
	if err != nil {
		print(err.Error())
		os.Exit(1)
	}

	var pagers []alert.Alert
	if !conf.Pagerduty.Empty() {
		pagers = append(pagers, alert.NewPagerduty(conf.Pagerduty))
	}
	classifier := autostake.NewClassifier(conf, pagers)

	input, wait, err := openInput(ctx, conf)
	if err != nil {
		conf.Log.WithError(err).Error("failed to open log input")
		os.Exit(1)
	}

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		classifier.Feed(ctx, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		conf.Log.WithError(err).Warn("log stream ended with error")
	}
	if wait != nil {
		if err := wait(); err != nil {
			conf.Log.WithError(err).Warn("log command exited with error")
		}
	}

	deliver(ctx, conf, classifier.Report())
}

// openInput returns the log stream: the configured command's combined
// output when LOG_COMMAND is set, stdin otherwise.
func openInput(ctx context.Context, conf *config.MonitorConfig) (io.Reader, func() error, error) {
	if len(conf.LogCommand) == 0 {
		return os.Stdin, nil, nil
	}

	cmd := exec.CommandContext(ctx, conf.LogCommand[0], conf.LogCommand[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}
	conf.Log.WithField("command", strings.Join(conf.LogCommand, " ")).Info("tailing log command")
	return stdout, cmd.Wait, nil
}

// deliver pushes the final report; failures are logged, never retried.
func deliver(ctx context.Context, conf *config.MonitorConfig, report string) {
	if !conf.Telegram.Empty() {
		tg := alert.NewTelegram(conf.Telegram, conf.Log)
		if err := tg.Raise(ctx, alert.Message{
			Message:  report,
			Severity: alert.Info,
			Name:     "autostake",
		}); err != nil {
			conf.Log.WithError(err).Error("failed to deliver telegram report")
		}
	}
	if !conf.Slack.Empty() {
		sl := alert.NewSlack(conf.Slack, conf.Log)
		if err := sl.Raise(ctx, alert.Message{
			Message:  stripHTML(report),
			Severity: alert.Info,
			Name:     "autostake",
		}); err != nil {
			conf.Log.WithError(err).Error("failed to deliver slack report")
		}
	}
}

var htmlTags = strings.NewReplacer("<b>", "*", "</b>", "*", "<pre>", "```\n", "</pre>", "\n```")

func stripHTML(report string) string {
	return htmlTags.Replace(report)
}
