// Package database handles the MySQL connection of the marketplace datastore.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL connections based on the application's configuration.
//
// # Connect
//
// The Connect function establishes the connection, configures the pool and
// verifies reachability with a bounded ping. The datastore is required at
// startup: the service refuses to start without it, because the in-memory
// ownership cache cannot be seeded otherwise.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
