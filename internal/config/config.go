package config

import "os"

// StoreKind selects where the aggregate snapshot lives.
type StoreKind string

const (
	StoreFile     StoreKind = "file"
	StoreSQLite   StoreKind = "sqlite"
	StorePostgres StoreKind = "postgres"
)

type Config struct {
	Store StoreKind

	// file store
	DataDir string

	// sql stores; empty uses the driver default DSN
	DSN string

	// slot key: the single row or file the aggregate is kept under
	SnapshotKey string
}

func FromEnv() Config {
	return Config{
		Store:       StoreKind(envOr("LASMONITOR_STORE", string(StoreFile))),
		DataDir:     envOr("LASMONITOR_DATA_DIR", "./data"),
		DSN:         envOr("LASMONITOR_DSN", ""),
		SnapshotKey: envOr("LASMONITOR_SNAPSHOT_KEY", "lasmonitor.v1.json"),
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
