package alert

import (
	"context"

	"github.com/PagerDuty/go-pagerduty"

	"github.com/numbergroup/cosmos-monitor/pkg/config"
)

func NewPagerduty(conf config.Pagerduty) Pagerduty {
	return Pagerduty{
		RoutingKey: conf.RoutingKey,
		Group:      conf.Group,
	}
}

type Pagerduty struct {
	RoutingKey string
	Group      string
}

func (p Pagerduty) Raise(ctx context.Context, msg Message) error {
	payload := &pagerduty.V2Payload{
		Summary:   msg.Message,
		Severity:  string(msg.Severity),
		Component: msg.Name,
		Source:    msg.Name,
		Group:     p.Group,
		Details:   msg.Metadata,
	}

	_, err := pagerduty.ManageEventWithContext(ctx, pagerduty.V2Event{
		RoutingKey: p.RoutingKey,
		Action:     "trigger",
		Payload:    payload,
	})
	return err
}
