package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./hoard.db"
)
