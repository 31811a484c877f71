package server

// DBConfig holds database configuration for the API server. Driver is
// "postgres", "mysql" or "mongo"; MongoURI and MongoDB apply only to the
// latter.
type DBConfig struct {
	Driver      string
	DSN         string
	TablePrefix string
	MongoURI    string
	MongoDB     string
}
