package matcher

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"gnucash-payment-matcher/internal/book"

	"github.com/shopspring/decimal"
)

// Proposal is a candidate pairing presented to the confirmation gate.
type Proposal struct {
	Transaction   *book.Transaction
	Split         *book.Split
	Document      *book.Document
	PaymentDate   time.Time
	PaymentAmount decimal.Decimal
}

// Gate decides whether a proposed pairing is committed. It is the one
// user-facing suspension point of a run: Confirm blocks until a decision
// is rendered.
type Gate interface {
	Confirm(p *Proposal) (bool, error)
}

// AutoGate accepts every proposal. Used for non-interactive runs.
type AutoGate struct{}

// Confirm implements Gate.
func (AutoGate) Confirm(*Proposal) (bool, error) {
	return true, nil
}

// PromptGate renders the pairing summary on Out and blocks for a yes/no
// answer on In. Anything other than an affirmative token rejects.
type PromptGate struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewPromptGate creates an interactive gate over the given streams.
func NewPromptGate(in io.Reader, out io.Writer) *PromptGate {
	return &PromptGate{In: in, Out: out, reader: bufio.NewReader(in)}
}

// Confirm implements Gate.
func (g *PromptGate) Confirm(p *Proposal) (bool, error) {
	if g.reader == nil {
		g.reader = bufio.NewReader(g.In)
	}

	company := p.Document.OwnerName
	if company == "" {
		company = "N/A"
	}

	fmt.Fprintln(g.Out, strings.Repeat("-", 20))
	fmt.Fprintln(g.Out, "Potential match found:")
	fmt.Fprintln(g.Out, "  Transaction details:")
	fmt.Fprintf(g.Out, "    Description: %s\n", p.Transaction.Description)
	fmt.Fprintf(g.Out, "    Date: %s\n", p.PaymentDate.Format("2006-01-02"))
	fmt.Fprintf(g.Out, "    Amount: %s\n", p.PaymentAmount.String())
	fmt.Fprintf(g.Out, "  %s details:\n", p.Document.Kind)
	fmt.Fprintf(g.Out, "    ID: %s\n", p.Document.ID)
	if p.Document.BillingID != "" {
		fmt.Fprintf(g.Out, "    Billing ID: %s\n", p.Document.BillingID)
	}
	fmt.Fprintf(g.Out, "    Company: %s\n", company)
	fmt.Fprintf(g.Out, "    Date: %s\n", p.Document.PostedDate.Format("2006-01-02"))
	fmt.Fprintf(g.Out, "    Amount: %s\n", p.Document.Total.String())
	fmt.Fprint(g.Out, "Match this? [y/N]: ")

	line, err := g.reader.ReadString('\n')
	if err != nil && line == "" {
		// EOF with no answer means reject, not failure.
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}

	return isAffirmative(line), nil
}

func isAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
