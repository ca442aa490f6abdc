package eta

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/numbergroup/cosmos-monitor/pkg/config"
)

// Result is one completed projection towards the upgrade height.
type Result struct {
	UpgradeName     string
	UpgradeHeight   int64
	CurrentHeight   int64
	Window          int64
	AvgBlockSeconds float64
	BlocksRemaining int64
	TimeRemaining   time.Duration
	ETA             time.Time
}

// Passed reports whether the chain is already at or beyond the upgrade
// height.
func (r Result) Passed() bool {
	return r.BlocksRemaining <= 0
}

func (r Result) String() string {
	name := r.UpgradeName
	if name == "" {
		name = "upgrade"
	}
	if r.Passed() {
		return fmt.Sprintf("%s height %d already reached, current height %d",
			name, r.UpgradeHeight, r.CurrentHeight)
	}
	return fmt.Sprintf("%s at height %d: %d blocks remaining, avg block time %.3fs over %d blocks, ETA %s (%s)",
		name, r.UpgradeHeight, r.BlocksRemaining, r.AvgBlockSeconds, r.Window,
		formatDuration(r.TimeRemaining), r.ETA.UTC().Format("2006-01-02 15:04:05 MST"))
}

// HTML renders the result for chat delivery with parse_mode=html.
func (r Result) HTML() string {
	name := r.UpgradeName
	if name == "" {
		name = "upgrade"
	}
	if r.Passed() {
		return fmt.Sprintf("<b>%s</b> height %d already reached (current height %d)",
			name, r.UpgradeHeight, r.CurrentHeight)
	}
	return fmt.Sprintf("<b>%s</b> at height %d\n%d blocks remaining\navg block time %.3fs\nETA <b>%s</b> (%s)",
		name, r.UpgradeHeight, r.BlocksRemaining, r.AvgBlockSeconds,
		formatDuration(r.TimeRemaining), r.ETA.UTC().Format("2006-01-02 15:04:05 MST"))
}

// formatDuration renders a duration as days/hours/minutes/seconds,
// dropping leading zero units.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// Estimate projects the time remaining until conf.UpgradeHeight. Unlike
// the sampling phase, fetch failures here are fatal: without the current
// and window-start headers there is nothing sane to report.
func Estimate(ctx context.Context, client HeaderSource, conf *config.Config) (*Result, error) {
	window := DynamicRange(ctx, client, conf)

	latest, err := client.LatestBlock(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch current block")
	}

	startHeight := latest.Height - window
	if startHeight < 1 {
		startHeight = 1
	}
	effective := latest.Height - startHeight
	if effective <= 0 {
		return nil, errors.Errorf("chain height %d too low to estimate block time", latest.Height)
	}

	start, err := client.BlockAt(ctx, startHeight)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch block %d", startHeight)
	}

	span := latest.Time.Sub(start.Time)
	if span <= 0 {
		return nil, errors.Errorf("non-increasing block timestamps between heights %d and %d", startHeight, latest.Height)
	}
	avg := span.Seconds() / float64(effective)

	blocksRemaining := conf.UpgradeHeight - latest.Height
	remaining := time.Duration(float64(blocksRemaining) * avg * float64(time.Second))
	if remaining < 0 {
		remaining = 0
	}

	res := &Result{
		UpgradeName:     conf.UpgradeName,
		UpgradeHeight:   conf.UpgradeHeight,
		CurrentHeight:   latest.Height,
		Window:          effective,
		AvgBlockSeconds: avg,
		BlocksRemaining: blocksRemaining,
		TimeRemaining:   remaining,
		ETA:             time.Now().Add(remaining),
	}

	conf.Log.WithFields(logrus.Fields{
		"height":    res.CurrentHeight,
		"window":    res.Window,
		"avg_block": fmt.Sprintf("%.3fs", res.AvgBlockSeconds),
		"remaining": res.BlocksRemaining,
	}).Debug("estimate complete")

	return res, nil
}
