package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/numbergroup/cosmos-monitor/pkg/config"
)

var (
	// ErrFetchExhausted marks fetches that failed after every retry.
	ErrFetchExhausted = errors.New("fetch retries exhausted")
	// ErrMalformedResponse marks payloads missing an expected field.
	// Callers treat it exactly like a fetch failure.
	ErrMalformedResponse = errors.New("malformed rpc response")
)

// Client queries a single CometBFT RPC endpoint over plain HTTP GET.
// Transport failures and non-2xx statuses are retried with a fixed
// inter-attempt wait; a payload missing expected fields is not worth
// retrying and fails the call directly.
type Client struct {
	base string
	http *retryablehttp.Client
	log  logrus.Ext1FieldLogger
}

func NewClient(conf *config.Config, endpoint string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = conf.Retry.Max
	rc.RetryWaitMin = conf.Retry.Wait
	rc.RetryWaitMax = conf.Retry.Wait
	rc.HTTPClient.Timeout = conf.FetchTimeout
	rc.Logger = nil

	return &Client{
		base: strings.TrimRight(endpoint, "/"),
		http: rc,
		log:  conf.Log,
	}
}

// newProbeClient issues single-shot requests only, for liveness checks.
func newProbeClient(conf *config.Config, endpoint string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.HTTPClient.Timeout = conf.ProbeTimeout
	rc.Logger = nil

	return &Client{
		base: strings.TrimRight(endpoint, "/"),
		http: rc,
		log:  conf.Log,
	}
}

func (c *Client) Endpoint() string { return c.base }

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to create request for %s", path)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to fetch %s%s", c.base, path), ErrFetchExhausted)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Mark(errors.Errorf("unexpected status code %d from %s%s", resp.StatusCode, c.base, path), ErrFetchExhausted)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to decode response from %s%s", c.base, path), ErrMalformedResponse)
	}
	return nil
}

// LatestBlock fetches the header of the highest block known to the node.
func (c *Client) LatestBlock(ctx context.Context) (BlockHeader, error) {
	return c.block(ctx, "/block")
}

// BlockAt fetches the header at the given height.
func (c *Client) BlockAt(ctx context.Context, height int64) (BlockHeader, error) {
	return c.block(ctx, fmt.Sprintf("/block?height=%d", height))
}

func (c *Client) block(ctx context.Context, path string) (BlockHeader, error) {
	var out blockResponse
	if err := c.get(ctx, path, &out); err != nil {
		return BlockHeader{}, err
	}

	hdr := out.Result.Block.Header
	if hdr.Height == "" {
		return BlockHeader{}, errors.Mark(errors.Errorf("missing block height in response from %s%s", c.base, path), ErrMalformedResponse)
	}
	height, err := strconv.ParseInt(hdr.Height, 10, 64)
	if err != nil {
		return BlockHeader{}, errors.Mark(errors.Wrapf(err, "failed to parse block height %q", hdr.Height), ErrMalformedResponse)
	}
	if height < 0 {
		return BlockHeader{}, errors.Mark(errors.Errorf("negative block height %d", height), ErrMalformedResponse)
	}
	if hdr.Time.IsZero() {
		return BlockHeader{}, errors.Mark(errors.Errorf("missing block time in response from %s%s", c.base, path), ErrMalformedResponse)
	}

	return BlockHeader{Height: height, Time: hdr.Time}, nil
}

// Network fetches the chain identifier reported by the node.
func (c *Client) Network(ctx context.Context) (string, error) {
	var out statusResponse
	if err := c.get(ctx, "/status", &out); err != nil {
		return "", err
	}
	if out.Result.NodeInfo.Network == "" {
		return "", errors.Mark(errors.Errorf("missing node_info.network in response from %s/status", c.base), ErrMalformedResponse)
	}
	return out.Result.NodeInfo.Network, nil
}
