package config

import (
	"testing"

	"gnucash-payment-matcher/internal/book"
)

func intPtr(v int) *int { return &v }

func TestParseMode(t *testing.T) {
	tests := []struct {
		mode    string
		want    book.DocKind
		wantErr bool
	}{
		{"ar", book.KindInvoice, false},
		{"ap", book.KindBill, false},
		{"", "", true},
		{"AR", "", true},
		{"invoices", "", true},
	}

	for _, tt := range tests {
		kind, err := ParseMode(tt.mode)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
			continue
		}
		if err == nil && kind != tt.want {
			t.Errorf("ParseMode(%q) = %s, want %s", tt.mode, kind, tt.want)
		}
	}
}

func TestBuildMatchConfig(t *testing.T) {
	cfg, err := BuildMatchConfig(intPtr(10), intPtr(30), true, false)
	if err != nil {
		t.Fatalf("BuildMatchConfig failed: %v", err)
	}
	if !cfg.WindowEnabled() {
		t.Error("Expected window to be enabled")
	}
	if !cfg.DryRun || cfg.Confirm {
		t.Error("Flags not carried into config")
	}

	if _, err := BuildMatchConfig(intPtr(10), nil, false, false); err == nil {
		t.Error("Expected error for a half-configured window")
	}

	open, err := BuildMatchConfig(nil, nil, false, true)
	if err != nil {
		t.Fatalf("BuildMatchConfig failed: %v", err)
	}
	if open.WindowEnabled() {
		t.Error("Expected no window when neither bound is given")
	}
	if !open.Confirm {
		t.Error("Confirm flag not carried into config")
	}
}
