// Package websocket pushes game updates to browsers and other watchers.
//
// A central Hub owns every connection. Clients subscribe to one session with
// the ?session=<id> query parameter and only receive that session's
// messages. Each client has a read pump, which only keeps the connection
// alive, and a write pump that sends queued messages and pings.
//
// Messages are JSON, one per frame:
//
//	{"session_id": "a1b2", "event": "state_update", "game_state": {...}}
//	{"session_id": "a1b2", "event": "turn", "data": {...}}
//
// BroadcastToSession and BroadcastEvent queue on the hub goroutine, so they
// are safe to call from any handler. A client whose buffer is full is
// dropped.
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
package websocket
