package eta

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/numbergroup/cosmos-monitor/pkg/config"
	"github.com/numbergroup/cosmos-monitor/pkg/rpc"
)

// HeaderSource is the minimal RPC surface the estimator needs.
type HeaderSource interface {
	LatestBlock(ctx context.Context) (rpc.BlockHeader, error)
	BlockAt(ctx context.Context, height int64) (rpc.BlockHeader, error)
}

// DynamicRange sizes the analysis window so it covers roughly
// conf.TargetHours of wall clock, measured from a short sample of recent
// blocks, clamped to [MinRange, MaxRange]. Every failure mode returns
// MinRange: the main estimate proceeds on a degraded but bounded window
// rather than aborting.
func DynamicRange(ctx context.Context, client HeaderSource, conf *config.Config) int64 {
	latest, err := client.LatestBlock(ctx)
	if err != nil {
		conf.Log.WithError(err).Warn("range sampling failed, falling back to min_range")
		return conf.MinRange
	}

	sampleHeight := latest.Height - conf.SampleSize
	if sampleHeight < 1 {
		// Young chain, shrink the sample to what exists.
		sampleHeight = 1
	}
	effective := latest.Height - sampleHeight
	if effective <= 0 {
		conf.Log.WithField("height", latest.Height).Warn("chain too short to sample, falling back to min_range")
		return conf.MinRange
	}

	sample, err := client.BlockAt(ctx, sampleHeight)
	if err != nil {
		conf.Log.WithError(err).Warn("range sampling failed, falling back to min_range")
		return conf.MinRange
	}

	span := latest.Time.Sub(sample.Time).Seconds()
	if span <= 0 {
		conf.Log.WithFields(logrus.Fields{
			"sample_height": sampleHeight,
			"height":        latest.Height,
		}).Warn("non-increasing block timestamps in sample, falling back to min_range")
		return conf.MinRange
	}

	sampleAvg := span / float64(effective)
	target := int64(conf.TargetHours * 3600 / sampleAvg)

	if target < conf.MinRange {
		return conf.MinRange
	}
	if target > conf.MaxRange {
		return conf.MaxRange
	}
	return target
}
