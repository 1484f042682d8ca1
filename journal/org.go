package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/btanalysis/analysis"
)

// FormatTradeOrg renders a trade as an Org-mode block suitable for pasting into a journal.
// It keeps all structured facts in a PROPERTIES drawer for easy search and
// leaves a Review section for notes.
func FormatTradeOrg(t analysis.Trade) string {
	heading := fmt.Sprintf("** Trade: %s (%s)", t.Pair, shortID(t.ID))
	open := t.OpenTime.UTC().Format(time.RFC3339)
	close := "open"
	if !t.IsOpen() {
		close = t.CloseTime.UTC().Format(time.RFC3339)
	}

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":PAIR: %s\n", t.Pair))
	b.WriteString(fmt.Sprintf(":OPEN_TIME: %s\n", open))
	b.WriteString(fmt.Sprintf(":CLOSE_TIME: %s\n", close))
	b.WriteString(fmt.Sprintf(":PROFIT_RATIO: %.4f\n", t.ProfitRatio))
	b.WriteString(fmt.Sprintf(":PROFIT_ABS: %.2f\n", t.ProfitAbs))
	b.WriteString(fmt.Sprintf(":EXIT_REASON: %s\n", t.ExitReason))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []analysis.Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
