// Package ws implements the session wire transport between a host and its
// guests over WebSocket.
//
// Host accepts any number of guest connections, runs one read/write pump
// pair per connection, dispatches request envelopes to registered
// handlers, and correlates each handler result back to the caller by
// request id. Broadcast fans a message out to every connected guest;
// delivery failures are contained per recipient.
//
// Client holds the guest's single connection. Request generates a fresh
// request id and blocks until the matching response arrives or the
// caller's context expires; On subscribes to unsolicited host broadcasts.
//
// The wire format is a single JSON Envelope with three kinds: request,
// response, and broadcast. Per-connection ordering follows the underlying
// TCP stream; nothing is guaranteed across connections.
package ws
