package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./shelfwise.db"

	// DefaultLoanPeriodDays is the due-date offset applied when a
	// reservation is approved
	DefaultLoanPeriodDays = 14
)
