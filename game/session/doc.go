// Package session manages live engine instances and their persistence.
// The Manager maps room IDs to running engines and rebuilds an engine
// from a persisted room when the host restarts mid-game. FilePersistence
// keeps one JSON snapshot per room on disk so that rebuild has something
// to resume from.
package session
