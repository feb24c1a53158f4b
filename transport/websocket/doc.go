// Package websocket pushes live game updates to browser views.
//
// A Hub keeps the clients of each session and fans out two kinds of
// messages to them:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "resolved", "data": {...}}
//
// Game states are always masked. Clients only listen; the read loop exists
// to answer pings and notice disconnects.
//
// The hub's client map is owned by the goroutine running Run. Broadcasts are
// queued on a buffered channel and never block the caller, so the hub can be
// used as a service.Notifier from timer callbacks.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
