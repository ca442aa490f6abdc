package alert

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// RaiseAll delivers msg on every channel, logging per-channel failures
// and returning the last one. Delivery is best effort; a failed channel
// never blocks the others.
func RaiseAll(ctx context.Context, log logrus.Ext1FieldLogger, channels []Alert, msg Message) error {
	var lastErr error
	for _, channel := range channels {
		if err := channel.Raise(ctx, msg); err != nil {
			log.WithError(err).WithField("name", msg.Name).Error("failed to raise alert")
			lastErr = err
		}
	}
	return errors.Wrap(lastErr, "failed to raise alert")
}
