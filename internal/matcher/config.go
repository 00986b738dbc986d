package matcher

import "fmt"

// Config controls a matching run.
//
// DaysBefore and DaysAfter bound the signed day difference
// (paymentDate - documentDate): the window accepts documents dated up to
// DaysBefore days after the payment and up to DaysAfter days before it.
// Date filtering is only active when both bounds are set; a half-set
// window is a configuration error.
type Config struct {
	DaysBefore *int
	DaysAfter  *int
	DryRun     bool
	Confirm    bool
}

// DefaultConfig returns a config with no date window, non-interactive,
// committing matches.
func DefaultConfig() *Config {
	return &Config{}
}

// WindowEnabled reports whether the date window filters candidates.
func (c *Config) WindowEnabled() bool {
	return c.DaysBefore != nil && c.DaysAfter != nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if (c.DaysBefore == nil) != (c.DaysAfter == nil) {
		return fmt.Errorf("days-before and days-after must be set together to enable date filtering")
	}
	if c.DaysBefore != nil && *c.DaysBefore < 0 {
		return fmt.Errorf("days-before cannot be negative")
	}
	if c.DaysAfter != nil && *c.DaysAfter < 0 {
		return fmt.Errorf("days-after cannot be negative")
	}
	return nil
}

// WithinWindow applies the date predicate to a signed day difference.
// With no window configured every difference passes.
func (c *Config) WithinWindow(diffDays int) bool {
	if !c.WindowEnabled() {
		return true
	}
	return -*c.DaysBefore <= diffDays && diffDays <= *c.DaysAfter
}
