package cardbank

// Config is a configuration for the cardbank application.
type Config struct {
	HTTPAddr string
	// SpendDayTZ is an IANA timezone name used to bucket payments into
	// spending days (e.g., "Australia/Sydney"). Empty means UTC.
	SpendDayTZ string
	// DefaultDailyLimit applies to cards created without an explicit limit,
	// in minor units.
	DefaultDailyLimit int64
	// CardNumberPrefix is the issuer prefix used when generating card
	// numbers (6/8/9 digits). Demo default: 421234.
	CardNumberPrefix string
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:          "localhost:9090",
		DefaultDailyLimit: 1000_00,
		CardNumberPrefix:  "421234",
	}
}
