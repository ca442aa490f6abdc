package autostake

import (
	"fmt"
	"math/big"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
)

// FormatBalance renders a base-denom integer amount with the decimal
// point placed exp digits from the right, trailing zeros trimmed.
func FormatBalance(amount string, exp int) (string, error) {
	if _, ok := new(big.Int).SetString(amount, 10); !ok {
		return "", errors.Errorf("invalid amount %q", amount)
	}
	neg := strings.HasPrefix(amount, "-")
	digits := strings.TrimPrefix(amount, "-")

	for len(digits) <= exp {
		digits = "0" + digits
	}
	whole := digits[:len(digits)-exp]
	frac := strings.TrimRight(digits[len(digits)-exp:], "0")

	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out, nil
}

// Symbol derives a display symbol from a base denom by stripping the
// micro/atto prefix and uppercasing, e.g. uphoton -> PHOTON.
func Symbol(denom string) string {
	trimmed := denom
	if len(denom) > 1 && (denom[0] == 'u' || denom[0] == 'a') {
		trimmed = denom[1:]
	}
	return strings.ToUpper(trimmed)
}

func amountBelow(amount string, threshold int64) bool {
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return false
	}
	return value.Cmp(big.NewInt(threshold)) < 0
}

// Report concatenates the accumulated rich-text body with a tabular
// per-chain summary, ready for parse_mode=html delivery.
func (c *Classifier) Report() string {
	if len(c.chains) == 0 {
		return "<b>Autostake report</b>\nno autostake logs found"
	}

	var b strings.Builder
	b.WriteString("<b>Autostake report</b>")
	for _, line := range c.lines {
		b.WriteString("\n")
		b.WriteString(line)
	}

	b.WriteString("\n\n<pre>")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "chain\tdelegators")
	for _, state := range c.chains {
		delegators := "-"
		if state.Delegators >= 0 {
			delegators = fmt.Sprintf("%d", state.Delegators)
		}
		fmt.Fprintf(tw, "%s\t%s\n", state.PrettyName, delegators)
	}
	tw.Flush()
	b.WriteString("</pre>")
	return b.String()
}
