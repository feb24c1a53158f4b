// Package session provides in-memory session management for the memory puzzle.
//
// Manager stores one service.Session per player, each with its own
// engine.GameEngine and settings profile. Session IDs are 4 hex characters
// generated with crypto/rand and looked up case-insensitively.
//
// The manager is safe for concurrent use. It does not serialise access to a
// session's engine; the service layer does that.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", engine.DefaultSettings(), engine.Easy, engine.RandomSeed())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Sessions are never written to disk. Idle sessions can be dropped with
// CleanupExpiredSessions, or periodically with RunCleanup.
package session
