// Package database manages the SQLite connection for Glowbridge Core.
//
// It provides connection lifecycle management (open, configure, close),
// embedded schema migrations, and health checks. The accessory registry
// and state history repositories build on the connection this package
// owns.
//
// SQLite is configured for a single writer with WAL mode so accessory
// reads stay fast while reconciliation or history writes are in flight.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: "./data/glowbridge.db", WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
