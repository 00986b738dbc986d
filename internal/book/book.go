package book

import (
	"context"
	"strings"

	"gnucash-payment-matcher/pkg/errors"
)

// Session owns the lifetime of an opened book. Implementations hold the
// underlying storage exclusively for the duration of a run.
type Session interface {
	Book() *Book
	// Save persists all pending mutations in a single all-or-nothing call.
	Save(ctx context.Context) error
	Close() error
}

// Book is the in-memory ledger graph loaded by a session. The matcher
// borrows its objects for the duration of a run; the only mutation it
// performs goes through AssignToLot.
type Book struct {
	root      *Account
	documents []*Document
	dirty     []*Split
}

// NewBook creates a book rooted at the given account tree with the given
// document set. Document order is preserved: it becomes the candidate
// pool order for matching.
func NewBook(root *Account, documents []*Document) *Book {
	return &Book{root: root, documents: documents}
}

// RootAccount returns the root of the account tree.
func (b *Book) RootAccount() *Account {
	return b.root
}

// FindAccountByPath resolves a colon-delimited account path from the
// root. Every path segment must match a child account name exactly.
func (b *Book) FindAccountByPath(path string) (*Account, error) {
	acc := b.root
	for _, part := range strings.Split(path, ":") {
		acc = acc.Child(part)
		if acc == nil {
			return nil, errors.Newf(errors.CategoryConfiguration,
				"account path '%s' not found", path)
		}
	}
	return acc, nil
}

// Documents returns documents of the given kind, optionally filtered by
// paid and active state. A nil filter matches everything. Order is the
// book's document order.
func (b *Book) Documents(kind DocKind, paid, active *bool) []*Document {
	var out []*Document
	for _, doc := range b.documents {
		if doc.Kind != kind {
			continue
		}
		if paid != nil && doc.Paid != *paid {
			continue
		}
		if active != nil && doc.Active != *active {
			continue
		}
		out = append(out, doc)
	}
	return out
}

// AssignToLot attaches an unassigned split to a lot and records the split
// as dirty for the session's save pass. The sole ledger mutation the
// matcher performs.
func (b *Book) AssignToLot(split *Split, lot *Lot) {
	split.Lot = lot
	lot.Splits = append(lot.Splits, split)
	b.dirty = append(b.dirty, split)
}

// DirtySplits returns the splits mutated since load, in mutation order.
func (b *Book) DirtySplits() []*Split {
	return b.dirty
}
