// Package store loads and saves GnuCash books kept in the SQLite3 file
// format. Only the schema subset the matcher needs is read: accounts,
// transactions, splits, lots, invoices and the two owner tables.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"gnucash-payment-matcher/internal/book"
	"gnucash-payment-matcher/pkg/errors"
	"gnucash-payment-matcher/pkg/logger"

	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3"
)

// GnuCash owner types as stored in invoices.owner_type.
const (
	ownerTypeCustomer = 2
	ownerTypeVendor   = 4
)

// Session is a SQLite-backed book session. The whole object graph is
// loaded at Open; Save flushes lot assignments back in one SQL
// transaction.
type Session struct {
	db   *sql.DB
	path string
	book *book.Book
	log  logger.Logger
}

// Compile-time check that Session implements book.Session.
var _ book.Session = (*Session)(nil)

// Open opens an existing GnuCash SQLite book and loads it. A missing or
// unreadable file is a session error; the caller gets no partial state.
func Open(path string) (*Session, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.SessionError("open", path, err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, errors.SessionError("open", path, err)
	}

	s := &Session{
		db:   db,
		path: path,
		log:  logger.GetGlobalLogger().WithComponent("store"),
	}

	b, err := s.load()
	if err != nil {
		_ = db.Close()
		return nil, errors.SessionError("load", path, err)
	}
	s.book = b

	return s, nil
}

// Book returns the loaded ledger graph.
func (s *Session) Book() *book.Book {
	return s.book
}

// Save persists every dirty split's lot assignment. All-or-nothing: any
// failure rolls the whole batch back.
func (s *Session) Save(ctx context.Context) error {
	dirty := s.book.DirtySplits()
	if len(dirty) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.SessionError("save", s.path, err)
	}

	stmt, err := tx.PrepareContext(ctx, `UPDATE splits SET lot_guid = ? WHERE guid = ?`)
	if err != nil {
		_ = tx.Rollback()
		return errors.SessionError("save", s.path, err)
	}
	defer stmt.Close()

	for _, split := range dirty {
		var lotGUID interface{}
		if split.Lot != nil {
			lotGUID = split.Lot.GUID
		}
		if _, err := stmt.ExecContext(ctx, lotGUID, split.GUID); err != nil {
			_ = tx.Rollback()
			return errors.SessionError("save", s.path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.SessionError("save", s.path, err)
	}

	s.log.WithField("splits", len(dirty)).Debug("saved lot assignments")
	return nil
}

// Close releases the underlying database handle.
func (s *Session) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.SessionError("close", s.path, err)
	}
	return nil
}

// load reads the full graph: account tree, lots, transactions with their
// splits in ledger order, then documents.
func (s *Session) load() (*book.Book, error) {
	accounts, root, err := s.loadAccounts()
	if err != nil {
		return nil, err
	}

	lots, err := s.loadLots(accounts)
	if err != nil {
		return nil, err
	}

	splitsByGUID, err := s.loadTransactions(accounts, lots)
	if err != nil {
		return nil, err
	}

	documents, err := s.loadDocuments(lots, splitsByGUID)
	if err != nil {
		return nil, err
	}

	return book.NewBook(root, documents), nil
}

func (s *Session) loadAccounts() (map[string]*book.Account, *book.Account, error) {
	rows, err := s.db.Query(`SELECT guid, name, account_type, parent_guid FROM accounts`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]*book.Account)
	parents := make(map[string]string)
	var root *book.Account

	for rows.Next() {
		var guid, name, accountType string
		var parentGUID sql.NullString
		if err := rows.Scan(&guid, &name, &accountType, &parentGUID); err != nil {
			return nil, nil, fmt.Errorf("scanning account: %w", err)
		}

		acc := &book.Account{GUID: guid, Name: name}
		accounts[guid] = acc
		if parentGUID.Valid {
			parents[guid] = parentGUID.String
		}
		if accountType == "ROOT" && root == nil {
			root = acc
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading accounts: %w", err)
	}
	if root == nil {
		return nil, nil, fmt.Errorf("book has no root account")
	}

	for guid, parentGUID := range parents {
		parent, ok := accounts[parentGUID]
		if !ok {
			continue
		}
		acc := accounts[guid]
		acc.Parent = parent
		parent.Children = append(parent.Children, acc)
	}

	return accounts, root, nil
}

func (s *Session) loadLots(accounts map[string]*book.Account) (map[string]*book.Lot, error) {
	rows, err := s.db.Query(`SELECT guid, account_guid, is_closed FROM lots`)
	if err != nil {
		return nil, fmt.Errorf("querying lots: %w", err)
	}
	defer rows.Close()

	lots := make(map[string]*book.Lot)
	for rows.Next() {
		var guid string
		var accountGUID sql.NullString
		var isClosed int
		if err := rows.Scan(&guid, &accountGUID, &isClosed); err != nil {
			return nil, fmt.Errorf("scanning lot: %w", err)
		}

		lot := &book.Lot{GUID: guid, Closed: isClosed != 0}
		if accountGUID.Valid {
			lot.Account = accounts[accountGUID.String]
		}
		lots[guid] = lot
	}
	return lots, rows.Err()
}

// loadTransactions reads transactions joined with their splits, ordered
// by post date so each account's split list comes out in ledger order.
func (s *Session) loadTransactions(accounts map[string]*book.Account, lots map[string]*book.Lot) (map[string]*book.Split, error) {
	rows, err := s.db.Query(`
		SELECT t.guid, t.post_date, t.description,
		       s.guid, s.account_guid, s.memo,
		       s.value_num, s.value_denom, s.lot_guid
		FROM transactions t
		JOIN splits s ON s.tx_guid = t.guid
		ORDER BY t.post_date, t.enter_date, t.guid, s.guid`)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	transactions := make(map[string]*book.Transaction)
	splits := make(map[string]*book.Split)

	for rows.Next() {
		var txGUID, description, splitGUID, accountGUID, memo string
		var postDate sql.NullString
		var valueNum, valueDenom int64
		var lotGUID sql.NullString

		if err := rows.Scan(&txGUID, &postDate, &description,
			&splitGUID, &accountGUID, &memo,
			&valueNum, &valueDenom, &lotGUID); err != nil {
			return nil, fmt.Errorf("scanning split: %w", err)
		}

		txn, ok := transactions[txGUID]
		if !ok {
			date, err := parseBookDate(postDate.String)
			if err != nil {
				return nil, fmt.Errorf("transaction %s: %w", txGUID, err)
			}
			txn = &book.Transaction{
				GUID:        txGUID,
				Description: description,
				PostDate:    date,
			}
			transactions[txGUID] = txn
		}

		acc, ok := accounts[accountGUID]
		if !ok {
			return nil, fmt.Errorf("split %s references unknown account %s", splitGUID, accountGUID)
		}

		split := &book.Split{
			GUID:        splitGUID,
			Transaction: txn,
			Account:     acc,
			Value:       rationalToDecimal(valueNum, valueDenom),
			Memo:        memo,
		}
		if lotGUID.Valid && lotGUID.String != "" {
			if lot, ok := lots[lotGUID.String]; ok {
				split.Lot = lot
				lot.Splits = append(lot.Splits, split)
			}
		}

		txn.Splits = append(txn.Splits, split)
		acc.Splits = append(acc.Splits, split)
		splits[splitGUID] = split
	}

	return splits, rows.Err()
}

// loadDocuments reads posted invoices and bills. The pool order the
// matcher sees is posted date, then document id. Unposted documents
// (no post lot) are not reconciliation candidates and are skipped.
func (s *Session) loadDocuments(lots map[string]*book.Lot, splits map[string]*book.Split) ([]*book.Document, error) {
	rows, err := s.db.Query(`
		SELECT i.guid, i.id, i.date_posted, i.active, i.owner_type,
		       i.billing_id, i.post_txn, i.post_lot, i.post_acc,
		       COALESCE(c.name, v.name, '') AS owner_name
		FROM invoices i
		LEFT JOIN customers c ON i.owner_type = 2 AND c.guid = i.owner_guid
		LEFT JOIN vendors   v ON i.owner_type = 4 AND v.guid = i.owner_guid
		ORDER BY i.date_posted, i.id`)
	if err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	defer rows.Close()

	var documents []*book.Document
	for rows.Next() {
		var guid, id string
		var datePosted, billingID, postTxn, postLot, postAcc sql.NullString
		var active, ownerType int
		var ownerName string

		if err := rows.Scan(&guid, &id, &datePosted, &active, &ownerType,
			&billingID, &postTxn, &postLot, &postAcc, &ownerName); err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		if !postLot.Valid || postLot.String == "" {
			continue
		}
		lot, ok := lots[postLot.String]
		if !ok {
			continue
		}

		var kind book.DocKind
		switch ownerType {
		case ownerTypeCustomer:
			kind = book.KindInvoice
		case ownerTypeVendor:
			kind = book.KindBill
		default:
			continue
		}

		date, err := parseBookDate(datePosted.String)
		if err != nil {
			return nil, fmt.Errorf("invoice %s: %w", id, err)
		}

		doc := &book.Document{
			GUID:       guid,
			Kind:       kind,
			ID:         id,
			BillingID:  billingID.String,
			OwnerName:  ownerName,
			Total:      documentTotal(postTxn.String, postAcc.String, splits),
			PostedDate: date,
			Paid:       lot.Closed,
			Active:     active != 0,
			PostedLot:  lot,
		}
		documents = append(documents, doc)
	}

	return documents, rows.Err()
}

// documentTotal derives the document total from the posting transaction's
// split into the control account.
func documentTotal(postTxn, postAcc string, splits map[string]*book.Split) decimal.Decimal {
	for _, split := range splits {
		if split.Transaction.GUID == postTxn && split.Account.GUID == postAcc {
			return split.Value.Abs()
		}
	}
	return decimal.Zero
}

func rationalToDecimal(num, denom int64) decimal.Decimal {
	if denom == 0 {
		return decimal.Zero
	}
	return decimal.New(num, 0).Div(decimal.New(denom, 0))
}

// parseBookDate handles the two timestamp encodings GnuCash has used in
// its SQL backends.
func parseBookDate(value string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04:05", // current releases
		"20060102150405",      // pre-3.0 books
		"2006-01-02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date value %q", value)
}
