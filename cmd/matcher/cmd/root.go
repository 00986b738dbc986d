package cmd

import (
	"fmt"
	"os"

	"gnucash-payment-matcher/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "payment-matcher",
	Short: "Match ledger payments to open invoices and bills",
	Long: `payment-matcher reconciles payments in a GnuCash book against open
receivable or payable documents. It walks every transaction touching a
payment account, finds the posting into the A/R or A/P control account,
and pairs it with exactly one outstanding document by amount and date.

Examples:
  payment-matcher match --gnucash-file books.gnucash \
    --payment-account "Assets:Current Assets:Checking Account" \
    --mode ar --ar-ap-account "Assets:Accounts Receivable"
  payment-matcher match --gnucash-file books.gnucash --mode ap \
    --payment-account Assets:Checking --ar-ap-account Liabilities:Accounts\ Payable \
    --days-before 10 --days-after 30 --dry-run`,
	Version: getVersionString(),
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads the optional config file, a local .env, and matching
// environment variables.
func initConfig() {
	// A .env alongside the invocation is picked up silently if present.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)

		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
			os.Exit(1)
		}

		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}

	viper.SetEnvPrefix("MATCHER")
	viper.AutomaticEnv()

	if viper.GetBool("verbose") {
		logger.SetLevel(logger.DebugLevel)
	}
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
