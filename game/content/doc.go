// Package content supplies task text and player identity attributes to the
// session layer.
//
// FileProvider mirrors the game config manager pattern: task sets are JSON
// files in a directory, loaded on demand and cached, with a default set
// embedded in the binary so the server works with no data directory at
// all. Task generation itself (AI or otherwise) is an external
// collaborator; this package only loads and serves prepared sets.
package content
