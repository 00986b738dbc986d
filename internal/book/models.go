package book

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocKind tags a document as a customer invoice (receivable) or a
// vendor bill (payable).
type DocKind string

const (
	KindInvoice DocKind = "Invoice"
	KindBill    DocKind = "Bill"
)

// String returns the string representation of DocKind.
func (k DocKind) String() string {
	return string(k)
}

// IsValid checks if the document kind is valid.
func (k DocKind) IsValid() bool {
	return k == KindInvoice || k == KindBill
}

// NewGUID mints a GnuCash-style GUID: 32 lowercase hex characters.
func NewGUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Account is one node of the ledger's account tree. Splits holds the
// postings booked against the account in ledger order; the matcher never
// re-sorts it.
type Account struct {
	GUID     string
	Name     string
	Parent   *Account
	Children []*Account
	Splits   []*Split
}

// Equal compares accounts by GUID. Identity comparison, never by name.
func (a *Account) Equal(other *Account) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.GUID == other.GUID
}

// FullName returns the colon-delimited path from the root, excluding the
// root account itself.
func (a *Account) FullName() string {
	if a == nil || a.Parent == nil {
		return ""
	}
	parent := a.Parent.FullName()
	if parent == "" {
		return a.Name
	}
	return parent + ":" + a.Name
}

// Child returns the direct child with the given name, or nil.
func (a *Account) Child(name string) *Account {
	for _, c := range a.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Transaction is a balanced set of splits recorded on one date with one
// description. The matcher treats it as immutable except for the side
// effect of a split joining a lot.
type Transaction struct {
	GUID        string
	Description string
	PostDate    time.Time
	Splits      []*Split
}

// String returns a short representation for diagnostics.
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{GUID: %s, Date: %s, Splits: %d}",
		t.GUID, t.PostDate.Format("2006-01-02"), len(t.Splits))
}

// Split is one leg of a transaction, booked against one account with a
// signed value. A split with no lot is unassigned, the precondition for
// being matchable.
type Split struct {
	GUID        string
	Transaction *Transaction
	Account     *Account
	Value       decimal.Decimal
	Lot         *Lot
	Memo        string
}

// String returns a short representation for diagnostics.
func (s *Split) String() string {
	return fmt.Sprintf("Split{GUID: %s, Account: %s, Value: %s}",
		s.GUID, s.Account.Name, s.Value.String())
}

// Lot groups splits from a single account to track an amount outstanding.
// Each posted document owns exactly one lot for its open balance.
type Lot struct {
	GUID    string
	Account *Account
	Closed  bool
	Splits  []*Split
}

// Document is an invoice or bill with a total amount and posted date.
// PostedLot is the lot tracking its remaining open balance.
type Document struct {
	GUID       string
	Kind       DocKind
	ID         string
	BillingID  string
	OwnerName  string
	Total      decimal.Decimal
	PostedDate time.Time
	Paid       bool
	Active     bool
	PostedLot  *Lot
}

// Validate performs basic sanity checks on the document.
func (d *Document) Validate() error {
	if !d.Kind.IsValid() {
		return fmt.Errorf("invalid document kind: %s", d.Kind)
	}
	if strings.TrimSpace(d.GUID) == "" {
		return fmt.Errorf("document GUID cannot be empty")
	}
	if d.PostedLot == nil {
		return fmt.Errorf("document %s has no posted lot", d.ID)
	}
	if d.PostedDate.IsZero() {
		return fmt.Errorf("document %s has no posted date", d.ID)
	}
	return nil
}

// String returns a short representation for diagnostics.
func (d *Document) String() string {
	return fmt.Sprintf("%s %s (%s) posted %s",
		d.Kind, d.ID, d.Total.String(), d.PostedDate.Format("2006-01-02"))
}
