// Package config builds component configurations from CLI flag state.
package config

import (
	"fmt"

	"gnucash-payment-matcher/internal/book"
	"gnucash-payment-matcher/internal/matcher"
)

// ParseMode maps the --mode flag to the document kind it matches against:
// 'ar' pairs receivable payments with invoices, 'ap' payable payments
// with bills.
func ParseMode(mode string) (book.DocKind, error) {
	switch mode {
	case "ar":
		return book.KindInvoice, nil
	case "ap":
		return book.KindBill, nil
	default:
		return "", fmt.Errorf("invalid mode '%s': must be 'ar' or 'ap'", mode)
	}
}

// BuildMatchConfig assembles and validates the matcher configuration.
// daysBefore/daysAfter are nil when the corresponding flag was not given;
// date filtering requires both.
func BuildMatchConfig(daysBefore, daysAfter *int, dryRun, confirm bool) (*matcher.Config, error) {
	cfg := matcher.DefaultConfig()
	cfg.DaysBefore = daysBefore
	cfg.DaysAfter = daysAfter
	cfg.DryRun = dryRun
	cfg.Confirm = confirm

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
