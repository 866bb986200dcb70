// Package session keeps game sessions in memory and, optionally, in a
// persistence layer.
//
// Sessions use 4-character hex IDs by default and are looked up
// case-insensitively. Each session owns its own engine.GameEngine.
//
//	manager := session.NewManager()
//	sess, err := manager.Create("", "arena", stage)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Persistence:
//
// FilePersistence writes one save slot directory per session:
//
//	sessions/<id>/state.json     world snapshot (state.msgpack with the msgpack codec)
//	sessions/<id>/meta.json      session id, config id, timestamps, turn and score
//	sessions/<id>/history.json   command history, cumulative and since the last reset
//	sessions/<id>/log.txt        "[YYYY-MM-DD HH:MM:SS] message" journal
//
// Files are written to a temporary name and renamed into place.
// PostgresPersistence stores the same data in the dsl_sessions and
// dsl_session_logs tables. NewPersistence picks Postgres when a database
// URL is configured.
//
// The manager saves on creation, on access when the stage has auto_save
// enabled, and on explicit Save calls. AppendLog writes to the journal when
// the persistence layer implements Journal and is a no-op otherwise.
package session
