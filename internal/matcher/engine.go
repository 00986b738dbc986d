package matcher

import (
	"fmt"
	"io"
	"time"

	"gnucash-payment-matcher/internal/book"
	"gnucash-payment-matcher/pkg/logger"

	"github.com/shopspring/decimal"
)

// LotAssigner is the single mutation surface the engine needs from the
// ledger. *book.Book satisfies it.
type LotAssigner interface {
	AssignToLot(split *book.Split, lot *book.Lot)
}

// Match records one accepted pairing for the run's audit trail.
type Match struct {
	Sequence      int
	Transaction   *book.Transaction
	Split         *book.Split
	Document      *book.Document
	PaymentDate   time.Time
	PaymentAmount decimal.Decimal
}

// Result aggregates a completed run.
type Result struct {
	DocumentsFound int
	Matches        []*Match
	ChangesMade    bool
}

// MatchCount returns the number of accepted pairings.
func (r *Result) MatchCount() int {
	return len(r.Matches)
}

// Engine walks the payment account's postings and pairs eligible control
// account postings with outstanding documents. Strictly sequential; the
// only suspension point is the confirmation gate.
type Engine struct {
	cfg  *Config
	book LotAssigner
	gate Gate
	out  io.Writer
	log  logger.Logger
}

// NewEngine creates an engine. A nil config gets defaults; a nil gate
// auto-accepts; a nil writer silences audit output.
func NewEngine(cfg *Config, assigner LotAssigner, gate Gate, out io.Writer) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matcher config: %w", err)
	}
	if gate == nil {
		gate = AutoGate{}
	}
	if out == nil {
		out = io.Discard
	}
	return &Engine{
		cfg:  cfg,
		book: assigner,
		gate: gate,
		out:  out,
		log:  logger.GetGlobalLogger().WithComponent("matcher"),
	}, nil
}

// Run performs one full pass over the payment account's postings against
// the given candidate documents. The documents slice itself is not
// mutated; the engine works on its own pool copy.
func (e *Engine) Run(paymentAcct, controlAcct *book.Account, documents []*book.Document) (*Result, error) {
	result := &Result{DocumentsFound: len(documents)}

	pool := make([]*book.Document, len(documents))
	copy(pool, documents)

	processed := make(map[string]bool)

	for _, split := range paymentAcct.Splits {
		txn := split.Transaction
		if processed[txn.GUID] {
			continue
		}
		// Mark before evaluating so a transaction with several postings
		// into the payment account is evaluated exactly once.
		processed[txn.GUID] = true

		candidate := eligibleSplit(txn, controlAcct)
		if candidate == nil {
			continue
		}

		doc := e.resolve(candidate, txn, controlAcct, pool)
		if doc == nil {
			continue
		}

		proposal := &Proposal{
			Transaction:   txn,
			Split:         candidate,
			Document:      doc,
			PaymentDate:   txn.PostDate,
			PaymentAmount: candidate.Value.Abs(),
		}

		accepted, err := e.gate.Confirm(proposal)
		if err != nil {
			return nil, fmt.Errorf("confirmation failed: %w", err)
		}
		if !accepted {
			// Rejection leaves the document in the pool and moves on to
			// the next transaction; the posting is not retried against
			// other documents.
			e.log.WithFields(logger.Fields{
				"transaction": txn.GUID,
				"document":    doc.ID,
			}).Debug("match rejected at confirmation gate")
			continue
		}

		e.commit(proposal, result)
		pool = removeDocument(pool, doc)
	}

	return result, nil
}

// eligibleSplit returns the single eligible non-payment posting of a
// transaction, or nil. Transactions without exactly two splits are not
// reconciliation candidates.
func eligibleSplit(txn *book.Transaction, controlAcct *book.Account) *book.Split {
	if len(txn.Splits) != 2 {
		return nil
	}
	for _, s := range txn.Splits {
		if s.Account.Equal(controlAcct) && s.Lot == nil {
			return s
		}
	}
	return nil
}

// resolve scans the pool in order and returns the first document whose
// total equals the payment amount, whose posted date falls inside the
// configured window, and whose lot is owned by the control account.
// First-fit: no optimization over amount or date closeness.
func (e *Engine) resolve(split *book.Split, txn *book.Transaction, controlAcct *book.Account, pool []*book.Document) *book.Document {
	paymentAmount := split.Value.Abs()
	paymentDate := txn.PostDate

	for _, doc := range pool {
		if !doc.Total.Equal(paymentAmount) {
			continue
		}
		if !e.cfg.WithinWindow(daysBetween(paymentDate, doc.PostedDate)) {
			continue
		}
		// All splits in a lot must share one account; a document whose
		// lot is booked elsewhere is misconfigured, not a candidate.
		if doc.PostedLot == nil || !doc.PostedLot.Account.Equal(controlAcct) {
			continue
		}
		return doc
	}
	return nil
}

// commit applies an accepted pairing: one audit line always, the lot
// assignment only outside dry-run.
func (e *Engine) commit(p *Proposal, result *Result) {
	match := &Match{
		Sequence:      len(result.Matches) + 1,
		Transaction:   p.Transaction,
		Split:         p.Split,
		Document:      p.Document,
		PaymentDate:   p.PaymentDate,
		PaymentAmount: p.PaymentAmount,
	}
	result.Matches = append(result.Matches, match)

	fmt.Fprintf(e.out, "[%d] Matching payment on %s (%s) to %s %s (%s) from %s\n",
		match.Sequence,
		match.PaymentDate.Format("2006-01-02"),
		match.PaymentAmount.String(),
		match.Document.Kind,
		match.Document.ID,
		match.Document.Total.String(),
		match.Document.PostedDate.Format("2006-01-02"))

	if e.cfg.DryRun {
		return
	}

	e.book.AssignToLot(p.Split, p.Document.PostedLot)
	result.ChangesMade = true
}

// daysBetween returns the signed calendar-day difference a - b.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(au.Sub(bu).Hours() / 24)
}

func removeDocument(pool []*book.Document, doc *book.Document) []*book.Document {
	for i, d := range pool {
		if d == doc {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}
