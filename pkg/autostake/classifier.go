package autostake

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/numbergroup/cosmos-monitor/pkg/alert"
	"github.com/numbergroup/cosmos-monitor/pkg/config"
)

type lineKind int

const (
	kindChainLoaded lineKind = iota
	kindNotRegistered
	kindBalance
	kindDelegators
	kindAttemptFailed
	kindAutostakeCompleted
	kindAutostakeFinished
	kindAutostakeFailed
	kindTxFailed
	kindError
)

type pattern struct {
	kind lineKind
	re   *regexp.Regexp
}

// Patterns are tried in order, first match wins. Lines matching none
// are dropped.
var patterns = []pattern{
	{kindChainLoaded, regexp.MustCompile(`Loaded chain`)},
	{kindNotRegistered, regexp.MustCompile(`[Oo]perator (?:is )?not registered`)},
	{kindBalance, regexp.MustCompile(`Fetched bot balance`)},
	{kindDelegators, regexp.MustCompile(`Found addresses with valid grants`)},
	{kindAttemptFailed, regexp.MustCompile(`Attempt (\d+) failed`)},
	{kindAutostakeCompleted, regexp.MustCompile(`Autostake completed`)},
	{kindAutostakeFinished, regexp.MustCompile(`Autostake finished`)},
	{kindAutostakeFailed, regexp.MustCompile(`Autostake failed`)},
	{kindTxFailed, regexp.MustCompile(`[Tt]ransaction failed`)},
	{kindError, regexp.MustCompile(`ERROR|[Ff]ailed with error`)},
}

var (
	// Leading timestamp token, either a full RFC3339-ish stamp or a bare
	// wall-clock time, optionally bracketed.
	timestampRe = regexp.MustCompile(`^\[?(?:\d{4}-\d{2}-\d{2}[T ])?\d{1,2}:\d{2}:\d{2}(?:[.,]\d+)?Z?\]?\s+`)

	fieldRe   = regexp.MustCompile(`(\w+)=(?:"([^"]*)"|(\S+))`)
	attemptRe = regexp.MustCompile(`Attempt (\d+) failed`)
)

// fields extracts key=value pairs from a log line. Quoted values keep
// embedded spaces.
func fields(line string) map[string]string {
	out := map[string]string{}
	for _, m := range fieldRe.FindAllStringSubmatch(line, -1) {
		if m[2] != "" {
			out[m[1]] = m[2]
		} else {
			out[m[1]] = m[3]
		}
	}
	return out
}

// ChainState is the transient per-chain record accumulated while the
// autostake run for that chain is in the stream. A fresh record replaces
// the previous one on every chain-loaded line.
type ChainState struct {
	Name         string
	PrettyName   string
	Delegators   int // -1 until a grant count is seen
	Attempts     int
	Unauthorized bool

	txReported         bool
	delegatorsReported bool
}

// Classifier consumes a line-oriented autostake log stream and builds
// the delivery report in memory. It is single-writer, scoped to one run.
type Classifier struct {
	conf   *config.MonitorConfig
	log    logrus.Ext1FieldLogger
	alerts []alert.Alert

	lines   []string
	chains  []*ChainState
	current *ChainState
}

func NewClassifier(conf *config.MonitorConfig, alerts []alert.Alert) *Classifier {
	return &Classifier{
		conf:   conf,
		log:    conf.Log,
		alerts: alerts,
	}
}

// Feed classifies a single log line, updating per-chain state and the
// accumulated report.
func (c *Classifier) Feed(ctx context.Context, line string) {
	line = strings.TrimSpace(timestampRe.ReplaceAllString(line, ""))
	if line == "" {
		return
	}
	for _, p := range patterns {
		if p.re.MatchString(line) {
			c.dispatch(ctx, p.kind, line)
			return
		}
	}
}

func (c *Classifier) dispatch(ctx context.Context, kind lineKind, line string) {
	if kind == kindChainLoaded {
		c.chainLoaded(line)
		return
	}
	if c.current == nil {
		// Matched noise before the first chain loads.
		c.log.WithField("line", line).Debug("dropping line outside chain scope")
		return
	}

	switch kind {
	case kindNotRegistered:
		c.current.Unauthorized = true
		c.append("⚠️ operator not registered")
	case kindBalance:
		c.balance(ctx, line)
	case kindDelegators:
		c.delegators(line)
	case kindAttemptFailed:
		c.attemptFailed(line)
	case kindAutostakeCompleted:
		c.append("✅ autostake completed")
	case kindAutostakeFinished:
		c.append("✅ autostake finished")
	case kindAutostakeFailed:
		c.append("❌ autostake failed")
		c.raise(ctx, fmt.Sprintf("autostake failed for %s", c.current.PrettyName))
	case kindTxFailed:
		if !c.current.txReported {
			c.current.txReported = true
			c.append("❌ transaction failed")
			c.raise(ctx, fmt.Sprintf("transaction failed for %s", c.current.PrettyName))
		}
	case kindError:
		c.append("❗ " + truncate(line, 200))
	}
}

func (c *Classifier) chainLoaded(line string) {
	f := fields(line)
	name := f["name"]
	pretty := f["prettyName"]
	if pretty == "" {
		pretty = name
	}
	if pretty == "" {
		pretty = "unknown chain"
	}

	state := &ChainState{
		Name:       name,
		PrettyName: pretty,
		Delegators: -1,
	}
	c.chains = append(c.chains, state)
	c.current = state
	c.append(fmt.Sprintf("\n<b>🌐 %s</b>", pretty))
}

func (c *Classifier) balance(ctx context.Context, line string) {
	f := fields(line)
	denom, amount := f["denom"], f["amount"]
	if denom == "" || amount == "" {
		// Do not propagate empty fields into the report.
		c.log.WithField("line", line).Debug("balance line missing denom or amount")
		return
	}

	exp := 6
	if c.conf.EthChains[strings.ToLower(c.current.Name)] || c.conf.EthChains[strings.ToLower(c.current.PrettyName)] {
		exp = 18
	}
	display, err := FormatBalance(amount, exp)
	if err != nil {
		c.log.WithError(err).WithField("line", line).Debug("unparseable balance amount")
		return
	}
	c.append(fmt.Sprintf("💰 %s %s", display, Symbol(denom)))

	if c.conf.BalanceAlert > 0 && amountBelow(amount, c.conf.BalanceAlert) {
		c.append(fmt.Sprintf("❗ balance below alert threshold %d", c.conf.BalanceAlert))
		c.raise(ctx, fmt.Sprintf("bot balance %s %s below threshold on %s", display, Symbol(denom), c.current.PrettyName))
	}
}

func (c *Classifier) delegators(line string) {
	f := fields(line)
	count, err := strconv.Atoi(f["count"])
	if err != nil {
		c.log.WithField("line", line).Debug("grant line missing count")
		return
	}
	c.current.Delegators = count
	if !c.current.delegatorsReported {
		c.current.delegatorsReported = true
		c.append(fmt.Sprintf("👥 %d delegators", count))
	}
}

func (c *Classifier) attemptFailed(line string) {
	c.current.Attempts++
	attempt := c.current.Attempts
	if m := attemptRe.FindStringSubmatch(line); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			attempt = n
		}
	}
	c.append(fmt.Sprintf("🔁 attempt %d failed", attempt))
}

func (c *Classifier) append(line string) {
	c.lines = append(c.lines, line)
}

func (c *Classifier) raise(ctx context.Context, summary string) {
	if len(c.alerts) == 0 {
		return
	}
	// Best effort, RaiseAll already logs per-channel failures.
	_ = alert.RaiseAll(ctx, c.log, c.alerts, alert.Message{
		Message:  summary,
		Severity: alert.Error,
		Name:     c.current.PrettyName,
	})
}

// Results returns the flat per-chain records in first-seen order.
func (c *Classifier) Results() []ChainState {
	out := make([]ChainState, 0, len(c.chains))
	for _, state := range c.chains {
		out = append(out, *state)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
