// Package engine contains the pure game simulations. An engine Instance
// owns one room's rules: it validates player actions, mutates room state,
// persists it through a RoomStore, and announces every transition through
// a Broadcaster. It knows nothing about sockets or sessions, which keeps
// the rules testable with an in-memory store and a recording broadcaster.
package engine
