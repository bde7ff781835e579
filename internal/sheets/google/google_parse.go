package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"kakeibo/internal/core"
)

// transactionRow renders tx in column order id, date, type, category, amount.
func transactionRow(tx core.Transaction) []any {
	return []any{
		tx.ID,
		tx.Date.UTC().Format(time.RFC3339),
		string(tx.Type),
		tx.Category,
		tx.Amount.StringFixed(core.AmountPlaces),
	}
}

// findIDRow returns the 1-based row of id in a column A read, or 0.
// Header and blank cells are skipped.
func findIDRow(values [][]any, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(fmt.Sprint(row[0]))
		if cell == want {
			return i + 1
		}
	}
	return 0
}
