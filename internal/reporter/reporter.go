package reporter

import (
	"fmt"
	"io"
	"strings"

	"gnucash-payment-matcher/internal/book"
	"gnucash-payment-matcher/internal/matcher"
)

// Reporter writes the run's user-facing lines: the found-document count
// up front and the save/no-change/dry-run summary at the end. Audit lines
// for individual matches are written by the engine through the same
// writer, between the two.
type Reporter struct {
	out io.Writer
}

// New creates a reporter writing to out.
func New(out io.Writer) *Reporter {
	if out == nil {
		out = io.Discard
	}
	return &Reporter{out: out}
}

// DocumentsFound reports the size of the initial candidate pool.
func (r *Reporter) DocumentsFound(kind book.DocKind, count int) {
	noun := "invoices"
	if kind == book.KindBill {
		noun = "bills"
	}
	fmt.Fprintf(r.out, "Found %d unpaid %s.\n", count, noun)
}

// Summary reports the run outcome. The caller triggers persistence only
// when Summary reported the saving path (changes made, not dry-run).
func (r *Reporter) Summary(result *matcher.Result, dryRun bool) {
	switch {
	case dryRun:
		fmt.Fprintf(r.out, "DRY RUN: Found %d potential matches. No changes will be saved.\n",
			result.MatchCount())
	case result.ChangesMade:
		fmt.Fprintf(r.out, "%d Matches found.\n", result.MatchCount())
		fmt.Fprintln(r.out, "Saving changes...")
	default:
		fmt.Fprintln(r.out, "No new matches found.")
	}
}

// Done writes the final completion line.
func (r *Reporter) Done() {
	fmt.Fprintln(r.out, "Done.")
}

// FormatMatch renders one audit record the way the engine prints it.
// Exposed for tests and alternative sinks.
func FormatMatch(m *matcher.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] Matching payment on %s (%s) to %s %s (%s) from %s",
		m.Sequence,
		m.PaymentDate.Format("2006-01-02"),
		m.PaymentAmount.String(),
		m.Document.Kind,
		m.Document.ID,
		m.Document.Total.String(),
		m.Document.PostedDate.Format("2006-01-02"))
	return b.String()
}
