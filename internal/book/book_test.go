package book

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func buildTestTree() *Account {
	root := &Account{GUID: NewGUID(), Name: "Root Account"}
	assets := &Account{GUID: NewGUID(), Name: "Assets", Parent: root}
	current := &Account{GUID: NewGUID(), Name: "Current Assets", Parent: assets}
	checking := &Account{GUID: NewGUID(), Name: "Checking Account", Parent: current}
	receivable := &Account{GUID: NewGUID(), Name: "Accounts Receivable", Parent: assets}

	root.Children = []*Account{assets}
	assets.Children = []*Account{current, receivable}
	current.Children = []*Account{checking}
	return root
}

func TestBook_FindAccountByPath(t *testing.T) {
	b := NewBook(buildTestTree(), nil)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"top level", "Assets", "Assets", false},
		{"nested", "Assets:Current Assets:Checking Account", "Checking Account", false},
		{"sibling branch", "Assets:Accounts Receivable", "Accounts Receivable", false},
		{"missing leaf", "Assets:Savings", "", true},
		{"missing root segment", "Liabilities:Loans", "", true},
		{"case sensitive", "assets", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := b.FindAccountByPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FindAccountByPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err == nil && acc.Name != tt.want {
				t.Errorf("FindAccountByPath(%q) = %s, want %s", tt.path, acc.Name, tt.want)
			}
		})
	}
}

func TestAccount_FullName(t *testing.T) {
	root := buildTestTree()
	b := NewBook(root, nil)

	checking, err := b.FindAccountByPath("Assets:Current Assets:Checking Account")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if got := checking.FullName(); got != "Assets:Current Assets:Checking Account" {
		t.Errorf("FullName() = %q", got)
	}
	if got := root.FullName(); got != "" {
		t.Errorf("root FullName() = %q, want empty", got)
	}
}

func TestAccount_Equal(t *testing.T) {
	a := &Account{GUID: "abc", Name: "One"}
	b := &Account{GUID: "abc", Name: "Two"}
	c := &Account{GUID: "def", Name: "One"}

	if !a.Equal(b) {
		t.Error("Accounts sharing a GUID must compare equal regardless of name")
	}
	if a.Equal(c) {
		t.Error("Accounts with different GUIDs must not compare equal")
	}
	var nilAcc *Account
	if a.Equal(nilAcc) {
		t.Error("Account must not equal nil")
	}
	if !nilAcc.Equal(nil) {
		t.Error("nil accounts compare equal")
	}
}

func testDoc(kind DocKind, id string, paid, active bool) *Document {
	control := &Account{GUID: NewGUID(), Name: "Accounts Receivable"}
	return &Document{
		GUID:       NewGUID(),
		Kind:       kind,
		ID:         id,
		Total:      decimal.RequireFromString("10.00"),
		PostedDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Paid:       paid,
		Active:     active,
		PostedLot:  &Lot{GUID: NewGUID(), Account: control},
	}
}

func boolPtr(v bool) *bool { return &v }

func TestBook_Documents(t *testing.T) {
	docs := []*Document{
		testDoc(KindInvoice, "I1", false, true),
		testDoc(KindInvoice, "I2", true, true),
		testDoc(KindBill, "B1", false, true),
		testDoc(KindInvoice, "I3", false, false),
	}
	b := NewBook(buildTestTree(), docs)

	unpaidInvoices := b.Documents(KindInvoice, boolPtr(false), nil)
	if len(unpaidInvoices) != 2 {
		t.Fatalf("Expected 2 unpaid invoices, got %d", len(unpaidInvoices))
	}
	// Query preserves book order: this is the matcher's pool order.
	if unpaidInvoices[0].ID != "I1" || unpaidInvoices[1].ID != "I3" {
		t.Errorf("Expected [I1 I3], got [%s %s]", unpaidInvoices[0].ID, unpaidInvoices[1].ID)
	}

	if got := b.Documents(KindBill, nil, nil); len(got) != 1 || got[0].ID != "B1" {
		t.Errorf("Expected the single bill, got %d documents", len(got))
	}

	activeUnpaid := b.Documents(KindInvoice, boolPtr(false), boolPtr(true))
	if len(activeUnpaid) != 1 || activeUnpaid[0].ID != "I1" {
		t.Errorf("Expected only I1 active and unpaid, got %d documents", len(activeUnpaid))
	}

	if got := b.Documents(KindBill, boolPtr(true), nil); len(got) != 0 {
		t.Errorf("Expected no paid bills, got %d", len(got))
	}
}

func TestBook_AssignToLot(t *testing.T) {
	b := NewBook(buildTestTree(), nil)

	control := &Account{GUID: NewGUID(), Name: "Accounts Receivable"}
	lot := &Lot{GUID: NewGUID(), Account: control}
	split := &Split{GUID: NewGUID(), Value: decimal.RequireFromString("25.00")}

	if len(b.DirtySplits()) != 0 {
		t.Fatal("Fresh book must have no dirty splits")
	}

	b.AssignToLot(split, lot)

	if split.Lot != lot {
		t.Error("AssignToLot must set the split's lot")
	}
	if len(lot.Splits) != 1 || lot.Splits[0] != split {
		t.Error("AssignToLot must register the split with the lot")
	}
	dirty := b.DirtySplits()
	if len(dirty) != 1 || dirty[0] != split {
		t.Error("AssignToLot must record the split as dirty")
	}
}

func TestNewGUID(t *testing.T) {
	guid := NewGUID()
	if len(guid) != 32 {
		t.Errorf("Expected 32-character GUID, got %d: %s", len(guid), guid)
	}
	for _, r := range guid {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			t.Errorf("GUID contains non-hex character %q: %s", r, guid)
		}
	}
	if NewGUID() == guid {
		t.Error("GUIDs must be unique")
	}
}

func TestDocument_Validate(t *testing.T) {
	doc := testDoc(KindInvoice, "I1", false, true)
	if err := doc.Validate(); err != nil {
		t.Errorf("Valid document failed validation: %v", err)
	}

	noLot := testDoc(KindBill, "B1", false, true)
	noLot.PostedLot = nil
	if err := noLot.Validate(); err == nil {
		t.Error("Expected validation failure for a document without a posted lot")
	}

	badKind := testDoc(KindInvoice, "I2", false, true)
	badKind.Kind = DocKind("Receipt")
	if err := badKind.Validate(); err == nil {
		t.Error("Expected validation failure for an unknown kind")
	}
}
