package config

type Database struct{}

var _ DatabaseConfig = Database{}

// GetDatabaseURL is the Postgres connection string. Empty selects the in-memory stores.
func (Database) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "")
}

// GetSeedFile is a JSON file of users and stores loaded into the in-memory stores
func (Database) GetSeedFile() string {
	return GetEnv("SEED_FILE", "")
}
