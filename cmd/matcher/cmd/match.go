package cmd

import (
	"context"
	"fmt"
	"os"

	"gnucash-payment-matcher/cmd/matcher/config"
	"gnucash-payment-matcher/internal/matcher"
	"gnucash-payment-matcher/internal/reporter"
	"gnucash-payment-matcher/internal/store"
	"gnucash-payment-matcher/pkg/errors"
	"gnucash-payment-matcher/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the match command
var (
	gnucashFile    string
	paymentAccount string
	mode           string
	arApAccount    string
	daysBefore     int
	daysAfter      int
	dryRun         bool
	confirm        bool
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match payments against unpaid invoices or bills",
	Long: `Match walks every transaction touching the payment account, finds the
two-leg transactions whose other posting hits the A/R or A/P control
account without a lot assignment, and pairs each with the first unpaid
document of matching amount (and date, when a window is configured).

An accepted pairing assigns the posting to the document's open-balance
lot. Date filtering is enabled only when both --days-before and
--days-after are given.

Examples:
  # Match receivable payments to invoices
  payment-matcher match --gnucash-file books.gnucash \
    --payment-account "Assets:Checking" --mode ar \
    --ar-ap-account "Assets:Accounts Receivable"

  # Payables, with a date window and per-match confirmation
  payment-matcher match --gnucash-file books.gnucash \
    --payment-account "Assets:Checking" --mode ap \
    --ar-ap-account "Liabilities:Accounts Payable" \
    --days-before 10 --days-after 30 --confirm

  # Report what would match without touching the book
  payment-matcher match --gnucash-file books.gnucash \
    --payment-account "Assets:Checking" --mode ar \
    --ar-ap-account "Assets:Accounts Receivable" --dry-run`,

	PreRunE: validateMatchFlags,
	RunE:    runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVarP(&gnucashFile, "gnucash-file", "f", "", "path to the GnuCash SQLite book (required)")
	matchCmd.Flags().StringVar(&paymentAccount, "payment-account", "", "full colon-delimited name of the payment account (required)")
	matchCmd.Flags().StringVarP(&mode, "mode", "m", "", "processing mode: 'ar' for invoices/receivables or 'ap' for bills/payables (required)")
	matchCmd.Flags().StringVar(&arApAccount, "ar-ap-account", "", "full colon-delimited name of the A/R or A/P control account (required)")

	matchCmd.Flags().IntVar(&daysBefore, "days-before", 0, "days the document date may be after the payment date; requires --days-after")
	matchCmd.Flags().IntVar(&daysAfter, "days-after", 0, "days the document date may be before the payment date; requires --days-before")

	matchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report matches without saving any changes")
	matchCmd.Flags().BoolVar(&confirm, "confirm", false, "confirm each match interactively")

	matchCmd.MarkFlagRequired("gnucash-file")
	matchCmd.MarkFlagRequired("payment-account")
	matchCmd.MarkFlagRequired("mode")
	matchCmd.MarkFlagRequired("ar-ap-account")

	viper.BindPFlag("gnucash-file", matchCmd.Flags().Lookup("gnucash-file"))
	viper.BindPFlag("payment-account", matchCmd.Flags().Lookup("payment-account"))
	viper.BindPFlag("mode", matchCmd.Flags().Lookup("mode"))
	viper.BindPFlag("ar-ap-account", matchCmd.Flags().Lookup("ar-ap-account"))
	viper.BindPFlag("dry-run", matchCmd.Flags().Lookup("dry-run"))
	viper.BindPFlag("confirm", matchCmd.Flags().Lookup("confirm"))
}

func validateMatchFlags(cmd *cobra.Command, args []string) error {
	// Values may be overridden from config file or environment.
	gnucashFile = viper.GetString("gnucash-file")
	paymentAccount = viper.GetString("payment-account")
	mode = viper.GetString("mode")
	arApAccount = viper.GetString("ar-ap-account")
	dryRun = viper.GetBool("dry-run")
	confirm = viper.GetBool("confirm")

	if gnucashFile == "" {
		return fmt.Errorf("gnucash-file is required")
	}
	if paymentAccount == "" {
		return fmt.Errorf("payment-account is required")
	}
	if arApAccount == "" {
		return fmt.Errorf("ar-ap-account is required")
	}
	if _, err := config.ParseMode(mode); err != nil {
		return err
	}

	info, err := os.Stat(gnucashFile)
	if os.IsNotExist(err) {
		return fmt.Errorf("gnucash file does not exist: %s", gnucashFile)
	}
	if err != nil {
		return fmt.Errorf("error accessing gnucash file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("gnucash file is a directory: %s", gnucashFile)
	}

	if cmd.Flags().Changed("days-before") != cmd.Flags().Changed("days-after") {
		return fmt.Errorf("days-before and days-after must be specified together")
	}

	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logger.GetGlobalLogger().WithComponent("cli")

	var before, after *int
	if cmd.Flags().Changed("days-before") {
		before, after = &daysBefore, &daysAfter
	}

	matchConfig, err := config.BuildMatchConfig(before, after, dryRun, confirm)
	if err != nil {
		return errors.Wrap(err, errors.CategoryConfiguration, "invalid matching configuration")
	}

	kind, err := config.ParseMode(mode)
	if err != nil {
		return errors.Wrap(err, errors.CategoryConfiguration, "invalid mode")
	}

	session, err := store.Open(gnucashFile)
	if err != nil {
		return err
	}
	defer session.Close()

	b := session.Book()

	paymentAcct, err := b.FindAccountByPath(paymentAccount)
	if err != nil {
		return errors.AccountNotFound("payment", paymentAccount)
	}
	controlAcct, err := b.FindAccountByPath(arApAccount)
	if err != nil {
		return errors.AccountNotFound("A/R or A/P", arApAccount)
	}

	unpaid := false
	documents := b.Documents(kind, &unpaid, nil)

	rep := reporter.New(cmd.OutOrStdout())
	rep.DocumentsFound(kind, len(documents))

	var gate matcher.Gate = matcher.AutoGate{}
	if matchConfig.Confirm {
		gate = matcher.NewPromptGate(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	engine, err := matcher.NewEngine(matchConfig, b, gate, cmd.OutOrStdout())
	if err != nil {
		return errors.Wrap(err, errors.CategoryConfiguration, "building matching engine")
	}

	result, err := engine.Run(paymentAcct, controlAcct, documents)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "matching run failed")
	}

	rep.Summary(result, matchConfig.DryRun)

	if result.ChangesMade && !matchConfig.DryRun {
		if err := session.Save(ctx); err != nil {
			return err
		}
		log.WithField("matches", result.MatchCount()).Info("changes saved")
	}

	rep.Done()
	return nil
}
