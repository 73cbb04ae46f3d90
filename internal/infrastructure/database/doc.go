// Package database provides SQLite database connectivity for Junction Core.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations applied from an embedded filesystem
//   - Connection lifecycle management and health checks
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Performance Characteristics:
//   - WAL mode allows concurrent reads during writes
//   - Busy timeout prevents lock contention errors
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration Strategy:
//
// Migrations are additive-only: new columns must be NULLABLE or carry
// DEFAULT values, and columns are never dropped or renamed. Each migration
// is a single YYYYMMDD_HHMMSS_description.up.sql file.
package database
