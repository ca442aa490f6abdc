package alert

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/numbergroup/cosmos-monitor/pkg/config"
)

const telegramAPIBase = "https://api.telegram.org"

func NewTelegram(conf config.Telegram, log logrus.Ext1FieldLogger) Telegram {
	return Telegram{
		conf:    conf,
		log:     log,
		apiBase: telegramAPIBase,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Telegram posts messages through the bot sendMessage endpoint with
// parse_mode=html. Delivery is fire and forget: the response body is
// not inspected and a failed send is not retried.
type Telegram struct {
	conf    config.Telegram
	log     logrus.Ext1FieldLogger
	apiBase string
	client  *http.Client
}

func (t Telegram) Raise(ctx context.Context, msg Message) error {
	if t.conf.Empty() {
		return errors.New("no telegram token or chat_id configured")
	}

	form := url.Values{}
	form.Set("chat_id", t.conf.ChatID)
	form.Set("text", msg.Message)
	form.Set("parse_mode", "html")

	endpoint := t.apiBase + "/bot" + t.conf.Token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "failed to create telegram request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send telegram message")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status code %d from telegram", resp.StatusCode)
	}
	return nil
}
