package matcher

import (
	"bytes"
	"strings"
	"testing"

	"gnucash-payment-matcher/internal/book"

	"github.com/shopspring/decimal"
)

func testProposal(billingID string) *Proposal {
	control := testAccount("Accounts Receivable")
	doc := testDocument(book.KindInvoice, "INV-42", "150.00", date(2024, 5, 1), control)
	doc.BillingID = billingID
	doc.OwnerName = "ACME Corp"

	txn := &book.Transaction{
		GUID:        book.NewGUID(),
		Description: "Wire transfer",
		PostDate:    date(2024, 5, 10),
	}

	return &Proposal{
		Transaction:   txn,
		Split:         &book.Split{GUID: book.NewGUID(), Transaction: txn},
		Document:      doc,
		PaymentDate:   txn.PostDate,
		PaymentAmount: decimal.RequireFromString("150.00"),
	}
}

func TestPromptGate_Answers(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		accept bool
	}{
		{"lowercase y", "y\n", true},
		{"uppercase Y", "Y\n", true},
		{"yes", "yes\n", true},
		{"YES", "YES\n", true},
		{"n", "n\n", false},
		{"empty line defaults to no", "\n", false},
		{"anything else rejects", "sure\n", false},
		{"eof rejects", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			gate := NewPromptGate(strings.NewReader(tt.input), &out)

			accepted, err := gate.Confirm(testProposal(""))
			if err != nil {
				t.Fatalf("Confirm failed: %v", err)
			}
			if accepted != tt.accept {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, accepted, tt.accept)
			}
		})
	}
}

func TestPromptGate_RendersSummary(t *testing.T) {
	var out bytes.Buffer
	gate := NewPromptGate(strings.NewReader("y\n"), &out)

	if _, err := gate.Confirm(testProposal("PO-7")); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	rendered := out.String()
	for _, want := range []string{
		"Potential match found:",
		"Description: Wire transfer",
		"Date: 2024-05-10",
		"Amount: 150",
		"Invoice details:",
		"ID: INV-42",
		"Billing ID: PO-7",
		"Company: ACME Corp",
		"Date: 2024-05-01",
		"Match this? [y/N]:",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Prompt output missing %q:\n%s", want, rendered)
		}
	}
}

func TestPromptGate_OmitsEmptyBillingID(t *testing.T) {
	var out bytes.Buffer
	gate := NewPromptGate(strings.NewReader("n\n"), &out)

	if _, err := gate.Confirm(testProposal("")); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	if strings.Contains(out.String(), "Billing ID") {
		t.Error("Billing ID line should be omitted when unset")
	}
}

func TestAutoGate_AlwaysAccepts(t *testing.T) {
	accepted, err := AutoGate{}.Confirm(testProposal(""))
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if !accepted {
		t.Error("AutoGate must accept every proposal")
	}
}

func TestPromptGate_ConsecutivePrompts(t *testing.T) {
	var out bytes.Buffer
	gate := NewPromptGate(strings.NewReader("y\nn\n"), &out)

	first, err := gate.Confirm(testProposal(""))
	if err != nil {
		t.Fatalf("first Confirm failed: %v", err)
	}
	second, err := gate.Confirm(testProposal(""))
	if err != nil {
		t.Fatalf("second Confirm failed: %v", err)
	}

	if !first || second {
		t.Errorf("Expected accept then reject, got %v then %v", first, second)
	}
}

// Owner fallback mirrors the prompt's N/A rendering for documents with
// no counterparty on file.
func TestPromptGate_MissingOwner(t *testing.T) {
	p := testProposal("")
	p.Document.OwnerName = ""

	var out bytes.Buffer
	gate := NewPromptGate(strings.NewReader("n\n"), &out)
	if _, err := gate.Confirm(p); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	if !strings.Contains(out.String(), "Company: N/A") {
		t.Error("Expected missing owner to render as N/A")
	}
}
