package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/partyline/lanboard/game/room"
)

var ErrRoomNotPersisted = errors.New("room not found in storage")

// FilePersistence implements RoomPersistence on the file system, one JSON
// file per room.
type FilePersistence struct {
	roomsDir string
}

// NewFilePersistence creates a file-based room persistence layer, creating
// the directory if needed.
func NewFilePersistence(roomsDir string) (*FilePersistence, error) {
	if err := os.MkdirAll(roomsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create rooms directory: %w", err)
	}
	return &FilePersistence{roomsDir: roomsDir}, nil
}

// Save writes the room snapshot to its JSON file.
func (fp *FilePersistence) Save(r *room.Room) error {
	if r == nil {
		return fmt.Errorf("room cannot be nil")
	}

	data, err := json.MarshalIndent(r.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	if err := os.WriteFile(fp.filePath(r.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write room file: %w", err)
	}
	return nil
}

// Load reads a room back from its JSON file. Members come back marked
// disconnected; they re-establish presence when their sockets return.
func (fp *FilePersistence) Load(id string) (*room.Room, error) {
	data, err := os.ReadFile(fp.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRoomNotPersisted
		}
		return nil, fmt.Errorf("failed to read room file: %w", err)
	}

	var r room.Room
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	for _, p := range r.Players {
		p.IsConnected = false
	}
	return &r, nil
}

// Delete removes a room file.
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrRoomNotPersisted
	}
	if err := os.Remove(fp.filePath(id)); err != nil {
		return fmt.Errorf("failed to remove room file: %w", err)
	}
	return nil
}

// ListAll returns the IDs of every persisted room.
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.roomsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read rooms directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name := entry.Name(); strings.HasSuffix(name, ".json") {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}
	return ids, nil
}

// Exists checks if a room file exists.
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.filePath(id))
	return err == nil
}

func (fp *FilePersistence) filePath(id string) string {
	return filepath.Join(fp.roomsDir, fmt.Sprintf("%s.json", id))
}
