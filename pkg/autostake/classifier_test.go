package autostake

import (
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/numbergroup/cosmos-monitor/pkg/alert"
	"github.com/numbergroup/cosmos-monitor/pkg/config"
)

type fakeAlert struct {
	msgs []alert.Message
}

func (f *fakeAlert) Raise(ctx context.Context, msg alert.Message) error {
	f.msgs = append(f.msgs, msg)
	return nil
}

func testMonConf(t *testing.T) *config.MonitorConfig {
	t.Helper()
	return &config.MonitorConfig{
		EthChains: map[string]bool{"evmos": true},
		Log:       logrus.New(),
	}
}

func feed(t *testing.T, c *Classifier, lines ...string) {
	t.Helper()
	for _, line := range lines {
		c.Feed(t.Context(), line)
	}
}

func TestClassifier_DelegatorCount(t *testing.T) {
	c := NewClassifier(testMonConf(t), nil)
	feed(t, c,
		"10:00:01 Loaded chain name=atomone prettyName=AtomOne",
		"10:00:05 Found addresses with valid grants count=42",
	)

	results := c.Results()
	if len(results) != 1 {
		t.Fatalf("expected 1 chain, got %d", len(results))
	}
	if results[0].PrettyName != "AtomOne" {
		t.Fatalf("expected chain AtomOne, got %q", results[0].PrettyName)
	}
	if results[0].Delegators != 42 {
		t.Fatalf("expected 42 delegators, got %d", results[0].Delegators)
	}
	if !strings.Contains(c.Report(), "42 delegators") {
		t.Fatalf("report missing delegator count: %q", c.Report())
	}
}

func TestClassifier_BalanceDefaultDenom(t *testing.T) {
	c := NewClassifier(testMonConf(t), nil)
	feed(t, c,
		"10:00:01 Loaded chain name=atomone prettyName=AtomOne",
		"10:00:02 Fetched bot balance denom=uphoton amount=48466853",
	)

	if !strings.Contains(c.Report(), "48.466853 PHOTON") {
		t.Fatalf("report missing formatted balance: %q", c.Report())
	}
}

func TestClassifier_BalanceEthDenom(t *testing.T) {
	c := NewClassifier(testMonConf(t), nil)
	feed(t, c,
		"10:00:01 Loaded chain name=evmos prettyName=Evmos",
		"10:00:02 Fetched bot balance denom=aevmos amount=1500000000000000000",
	)

	if !strings.Contains(c.Report(), "1.5 EVMOS") {
		t.Fatalf("report missing 18-decimal balance: %q", c.Report())
	}
}

func TestClassifier_LowBalanceRaisesAlert(t *testing.T) {
	conf := testMonConf(t)
	conf.BalanceAlert = 50000000
	fake := &fakeAlert{}
	c := NewClassifier(conf, []alert.Alert{fake})
	feed(t, c,
		"10:00:01 Loaded chain name=atomone prettyName=AtomOne",
		"10:00:02 Fetched bot balance denom=uphoton amount=48466853",
	)

	if len(fake.msgs) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(fake.msgs))
	}
	if !strings.Contains(fake.msgs[0].Message, "below threshold") {
		t.Fatalf("unexpected alert message: %q", fake.msgs[0].Message)
	}
	if !strings.Contains(c.Report(), "below alert threshold") {
		t.Fatalf("report missing low balance warning: %q", c.Report())
	}
}

func TestClassifier_UnauthorizedOperator(t *testing.T) {
	c := NewClassifier(testMonConf(t), nil)
	feed(t, c,
		"10:00:01 Loaded chain name=atomone prettyName=AtomOne",
		"10:00:02 Operator not registered",
	)

	results := c.Results()
	if !results[0].Unauthorized {
		t.Fatal("expected chain marked unauthorized")
	}
	if results[0].Delegators != -1 {
		t.Fatalf("expected unknown delegator count, got %d", results[0].Delegators)
	}
	if !strings.Contains(c.Report(), "operator not registered") {
		t.Fatalf("report missing unauthorized note: %q", c.Report())
	}
}

func TestClassifier_StateResetsOnChainLoad(t *testing.T) {
	c := NewClassifier(testMonConf(t), nil)
	feed(t, c,
		"10:00:01 Loaded chain name=atomone prettyName=AtomOne",
		"10:00:02 Transaction failed code=5",
		"10:00:03 Transaction failed code=5",
		"10:00:04 Loaded chain name=juno prettyName=Juno",
		"10:00:05 Transaction failed code=5",
	)

	report := c.Report()
	if got := strings.Count(report, "transaction failed"); got != 2 {
		t.Fatalf("expected one tx-failed line per chain (2, not %d): %q", got, report)
	}

	results := c.Results()
	if len(results) != 2 {
		t.Fatalf("expected 2 chains, got %d", len(results))
	}
	if results[1].PrettyName != "Juno" {
		t.Fatalf("expected second chain Juno, got %q", results[1].PrettyName)
	}
}

func TestClassifier_AttemptCounter(t *testing.T) {
	c := NewClassifier(testMonConf(t), nil)
	feed(t, c,
		"10:00:01 Loaded chain name=atomone prettyName=AtomOne",
		"10:00:02 Attempt 1 failed",
		"10:00:03 Attempt 2 failed",
	)

	if got := c.Results()[0].Attempts; got != 2 {
		t.Fatalf("expected 2 failed attempts, got %d", got)
	}
	if !strings.Contains(c.Report(), "attempt 2 failed") {
		t.Fatalf("report missing attempt line: %q", c.Report())
	}
}

func TestClassifier_UnmatchedLinesDropped(t *testing.T) {
	c := NewClassifier(testMonConf(t), nil)
	feed(t, c,
		"10:00:01 some unrelated chatter",
		"10:00:02 Querying delegations page 3",
	)

	if len(c.Results()) != 0 {
		t.Fatalf("expected no chains, got %d", len(c.Results()))
	}
	if !strings.Contains(c.Report(), "no autostake logs") {
		t.Fatalf("expected fallback report, got %q", c.Report())
	}
}

func TestClassifier_TimestampVariants(t *testing.T) {
	c := NewClassifier(testMonConf(t), nil)
	feed(t, c,
		"2026-08-30T10:00:01.123Z Loaded chain name=atomone prettyName=AtomOne",
		"[10:00:05] Found addresses with valid grants count=7",
	)

	results := c.Results()
	if len(results) != 1 || results[0].Delegators != 7 {
		t.Fatalf("timestamp stripping failed, results %+v", results)
	}
}

func TestClassifier_ReportTable(t *testing.T) {
	c := NewClassifier(testMonConf(t), nil)
	feed(t, c,
		"10:00:01 Loaded chain name=atomone prettyName=AtomOne",
		"10:00:02 Found addresses with valid grants count=42",
		"10:00:03 Loaded chain name=juno prettyName=Juno",
		"10:00:04 Operator not registered",
	)

	report := c.Report()
	if !strings.Contains(report, "<pre>") || !strings.Contains(report, "</pre>") {
		t.Fatalf("report missing summary table: %q", report)
	}
	if !strings.Contains(report, "AtomOne") || !strings.Contains(report, "Juno") {
		t.Fatalf("table missing chains: %q", report)
	}
}

func TestFormatBalance(t *testing.T) {
	cases := []struct {
		amount string
		exp    int
		want   string
	}{
		{"48466853", 6, "48.466853"},
		{"1500000000000000000", 18, "1.5"},
		{"1000000", 6, "1"},
		{"123", 6, "0.000123"},
		{"0", 6, "0"},
	}
	for _, tc := range cases {
		got, err := FormatBalance(tc.amount, tc.exp)
		if err != nil {
			t.Errorf("FormatBalance(%q, %d) failed: %v", tc.amount, tc.exp, err)
			continue
		}
		if got != tc.want {
			t.Errorf("FormatBalance(%q, %d) = %q, want %q", tc.amount, tc.exp, got, tc.want)
		}
	}

	if _, err := FormatBalance("not-a-number", 6); err == nil {
		t.Error("expected error for invalid amount")
	}
}

func TestSymbol(t *testing.T) {
	cases := map[string]string{
		"uphoton": "PHOTON",
		"aevmos":  "EVMOS",
		"ujuno":   "JUNO",
		"stake":   "STAKE",
	}
	for denom, want := range cases {
		if got := Symbol(denom); got != want {
			t.Errorf("Symbol(%q) = %q, want %q", denom, got, want)
		}
	}
}
