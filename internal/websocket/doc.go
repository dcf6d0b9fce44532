// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

/*
Package websocket mirrors progress streams to the browser over gorilla/websocket.

Long-running passes (connection inference, airline and detail enrichment)
report progress over server-sent events on the request that started them.
The hub copies the same frames to every socket the owning user has open,
so a second tab can follow a pass it did not start. Frames are never sent
to another user's sockets.

	sink := progress.NewMulti(sse, hub.Mirror(principal.Username, websocket.StreamEnrich))
	tracker := progress.NewTracker(sink)

Messages:

	{"type":"progress","stream":"enrich","data":{"type":"progress","total":4,"current":1,...}}
	{"type":"pong"}

Clients may send {"type":"ping"}; anything else they send is ignored.

Delivery never blocks a pass. Send drops the message when the hub queue is
full and a client whose own buffer overflows is disconnected; both count
towards websocket_messages_dropped_total.

The hub runs under the supervisor through RunWithContext and closes every
client when its context ends.
*/
package websocket
