// Package discovery implements LAN room discovery over UDP broadcast.
//
// An Advertiser on the host sends a JSON RoomBroadcast datagram every two
// seconds; a Listener on prospective guests collects them keyed by room
// id and drops entries that go ten seconds without a refresh. Delivery is
// best effort: both sides tolerate loss, duplication, and reordering, and
// freshness is judged by the embedded timestamp rather than arrival order.
//
// No game semantics live here; the payload only carries what a guest
// needs to render a room list and dial the host.
package discovery
