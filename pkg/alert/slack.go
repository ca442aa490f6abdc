package alert

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/numbergroup/cosmos-monitor/pkg/config"
)

func NewSlack(conf config.Slack, log logrus.Ext1FieldLogger) Slack {
	return Slack{
		conf: conf,
		log:  log,
	}
}

type Slack struct {
	conf config.Slack
	log  logrus.Ext1FieldLogger
}

// Raise sends the message via webhook when one is configured, falling
// back to channel/token.
func (s Slack) Raise(ctx context.Context, msg Message) error {
	slackMsg := &slack.WebhookMessage{
		Text: s.formatMessage(msg),
		Attachments: []slack.Attachment{
			{
				Color:  s.severityColor(msg.Severity),
				Fields: s.buildMetadataFields(msg),
			},
		},
	}

	if len(s.conf.WebhookURL) != 0 {
		err := slack.PostWebhookContext(ctx, s.conf.WebhookURL, slackMsg)
		if err != nil {
			s.log.WithError(err).WithField("name", msg.Name).Error("failed to send Slack alert via webhook")
		}
		return err
	}

	if len(s.conf.Channel) != 0 && len(s.conf.Token) != 0 {
		api := slack.New(s.conf.Token)
		_, _, err := api.PostMessageContext(ctx, s.conf.Channel,
			slack.MsgOptionText(s.formatMessage(msg), false),
			slack.MsgOptionAttachments(slack.Attachment{
				Color:  s.severityColor(msg.Severity),
				Fields: s.buildMetadataFields(msg),
			}),
		)
		if err != nil {
			s.log.WithError(err).WithField("name", msg.Name).Error("failed to send Slack alert via channel")
		}
		return err
	}

	return errors.New("no valid Slack configuration found for alerting")
}

func (s Slack) formatMessage(msg Message) string {
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(msg.Severity)), msg.Name, msg.Message)
}

func (s Slack) severityColor(severity Severity) string {
	switch severity {
	case Error:
		return "danger"
	case Info:
		return "good"
	default:
		return "warning"
	}
}

func (s Slack) buildMetadataFields(msg Message) []slack.AttachmentField {
	var fields []slack.AttachmentField

	for key, value := range msg.Metadata {
		fields = append(fields, slack.AttachmentField{
			Title: key,
			Value: fmt.Sprintf("%v", value),
			Short: true,
		})
	}

	return fields
}
