package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

// setRequiredFlags points the match command at a real temp book file with
// an otherwise valid flag set.
func setRequiredFlags(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	bookFile := filepath.Join(tmpDir, "books.gnucash")
	if err := os.WriteFile(bookFile, []byte("stub"), 0644); err != nil {
		t.Fatalf("failed to create test book file: %v", err)
	}

	for flag, value := range map[string]string{
		"gnucash-file":    bookFile,
		"payment-account": "Assets:Checking Account",
		"mode":            "ar",
		"ar-ap-account":   "Assets:Accounts Receivable",
	} {
		if err := matchCmd.Flags().Set(flag, value); err != nil {
			t.Fatalf("failed to set flag %s: %v", flag, err)
		}
	}

	return bookFile
}

func TestValidateMatchFlags(t *testing.T) {
	setRequiredFlags(t)

	// Valid baseline, no date window.
	if err := validateMatchFlags(matchCmd, nil); err != nil {
		t.Fatalf("expected valid flags to pass, got: %v", err)
	}

	// Mode must be ar or ap.
	matchCmd.Flags().Set("mode", "all")
	if err := validateMatchFlags(matchCmd, nil); err == nil {
		t.Error("expected invalid mode to be rejected")
	}
	matchCmd.Flags().Set("mode", "ap")
	if err := validateMatchFlags(matchCmd, nil); err != nil {
		t.Errorf("expected mode 'ap' to pass, got: %v", err)
	}

	// Missing book file.
	matchCmd.Flags().Set("gnucash-file", "/non/existent/books.gnucash")
	if err := validateMatchFlags(matchCmd, nil); err == nil {
		t.Error("expected missing book file to be rejected")
	}
	setRequiredFlags(t)

	// A half-configured date window is a flag error; both bounds
	// together pass. Flag change state is sticky, so the one-sided case
	// must run before the two-sided one.
	matchCmd.Flags().Set("days-before", "10")
	if err := validateMatchFlags(matchCmd, nil); err == nil {
		t.Error("expected days-before without days-after to be rejected")
	}
	matchCmd.Flags().Set("days-after", "30")
	if err := validateMatchFlags(matchCmd, nil); err != nil {
		t.Errorf("expected full window to pass, got: %v", err)
	}
}
