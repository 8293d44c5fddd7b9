// Package storage provides the storage context: the single entry point callers use
// to read and write songs and playlists.
//
// A [Context] owns one configured database connection and exposes two typed
// collections, [Context.Songs] and [Context.Playlists]. Reads go straight to the
// database and only see committed data. Writes (Add, Update, Remove) are validated
// immediately and then staged in a change log; nothing reaches the database until
// [Context.SaveChanges] applies the whole log, in staging order, inside one
// transaction.
//
// When SaveChanges fails the transaction is rolled back, ids the store assigned
// during the attempt are cleared again, and the change log is kept so the caller
// can fix the problem and retry, or drop the log with [Context.Discard].
//
// A Context is not safe for concurrent mutation. Open one per logical session.
//
//	sc, err := storage.Open(ctx, cfg.Database, logger)
//	if err != nil {
//		return err
//	}
//	defer sc.Close()
//
//	playlist, _ := models.NewPlaylist(1, "Road Trip", 10, 11, 12)
//	if err := sc.Playlists().Add(playlist); err != nil {
//		return err
//	}
//	if _, err := sc.SaveChanges(ctx); err != nil {
//		return err
//	}
package storage
