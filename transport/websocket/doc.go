// Package websocket streams region events to WebSocket clients.
//
// A central Hub owns every connection. Each client follows one actor, given
// as ?actor=<uuid> when connecting, or every actor with ?actor=*. Events are
// queued with BroadcastEvent and fanned out by the hub's Run loop.
//
// Message Protocol:
//
// Outgoing messages are JSON:
//
//	{"actor": "<uuid>", "event": "region_entered", "data": {...entry.Event...}}
//
// Incoming messages are read only to keep the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	handler.Subscribe(hub.OnRegionEvent)
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("actor"))
//	})
package websocket
