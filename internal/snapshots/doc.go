// Package snapshots stores previously measured aspect ratios keyed by
// attachment id, so a post rendered again lays out with the measured ratio
// before any bytes are fetched.
//
// Two tiers are provided:
//
//   - SQLiteStore persists snapshots in a SQLite database
//   - Cache keeps hot snapshots in memory (go-cache) in front of a Backend
//
// Cache implements aspect.SnapshotSource, which is the only view the layout
// core has of this package: the core reads snapshots and never writes them.
// Writes come from the probe service through Cache.Record once decoded
// bytes have been measured.
//
//	store, err := snapshots.OpenSQLite(ctx, "/database/snapshots.db")
//	cache := snapshots.NewCache(store, 30*time.Minute, observer)
//	resolver := aspect.NewResolver(cache, observer)
package snapshots
