package rpc

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/numbergroup/cosmos-monitor/pkg/config"
)

// ErrNoEndpointAvailable means every configured candidate failed its
// liveness probe. There is no fallback beyond this; the run aborts.
var ErrNoEndpointAvailable = errors.New("no rpc endpoint available")

// SelectEndpoint probes the configured candidates strictly in declared
// order and returns a client for the first one that answers a status
// request within the probe timeout.
func SelectEndpoint(ctx context.Context, conf *config.Config) (*Client, error) {
	for _, endpoint := range conf.Endpoints {
		probe := newProbeClient(conf, endpoint)

		probeCtx, cancel := context.WithTimeout(ctx, conf.ProbeTimeout)
		network, err := probe.Network(probeCtx)
		cancel()
		if err != nil {
			conf.Log.WithError(err).WithField("endpoint", endpoint).Warn("endpoint failed liveness probe")
			continue
		}

		conf.Log.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"network":  network,
		}).Info("selected rpc endpoint")
		return NewClient(conf, endpoint), nil
	}
	return nil, ErrNoEndpointAvailable
}
