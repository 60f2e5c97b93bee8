package content

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/partyline/lanboard/game/room"
)

var (
	ErrTaskSetNotFound = errors.New("task set not found")
	ErrInvalidTaskSet  = errors.New("invalid task set")
)

//go:embed tasksets/*.json
var embedded embed.FS

// DefaultTaskSetID is the task set used when a room is created without an
// explicit selection.
const DefaultTaskSetID = "classic"

// TaskSetInfo describes an available task set without its full contents.
type TaskSetInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	TaskCount   int    `json:"taskCount"`
}

// Provider supplies task content to the orchestrator. Implementations must
// be safe for concurrent use.
type Provider interface {
	TaskSet(id string) (*room.TaskSet, error)
	List() ([]*TaskSetInfo, error)
	Default() *room.TaskSet
}

// FileProvider loads task sets from JSON files in a directory, with a set
// embedded in the binary as fallback so the server runs with no data dir.
// Loaded sets are cached.
type FileProvider struct {
	dir      string
	log      zerolog.Logger
	mu       sync.RWMutex
	cache    map[string]*room.TaskSet
	fallback *room.TaskSet
}

// NewFileProvider creates a provider reading from dir. An empty dir means
// embedded-only mode; a non-empty dir must exist.
func NewFileProvider(dir string, log zerolog.Logger) (*FileProvider, error) {
	if dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil, fmt.Errorf("task set directory does not exist: %s", dir)
		}
	}

	p := &FileProvider{
		dir:   dir,
		log:   log.With().Str("component", "content").Logger(),
		cache: make(map[string]*room.TaskSet),
	}

	fallback, err := p.loadEmbedded(DefaultTaskSetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded default task set: %w", err)
	}
	p.fallback = fallback

	return p, nil
}

// TaskSet loads a task set by id, preferring the directory over the
// embedded sets.
func (p *FileProvider) TaskSet(id string) (*room.TaskSet, error) {
	p.mu.RLock()
	if ts, ok := p.cache[id]; ok {
		p.mu.RUnlock()
		return ts, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if ts, ok := p.cache[id]; ok {
		return ts, nil
	}

	if p.dir != "" {
		data, err := os.ReadFile(filepath.Join(p.dir, id+".json"))
		if err == nil {
			ts, perr := parseTaskSet(id, data)
			if perr != nil {
				return nil, perr
			}
			p.cache[id] = ts
			return ts, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read task set file: %w", err)
		}
	}

	ts, err := p.loadEmbedded(id)
	if err != nil {
		return nil, err
	}
	p.cache[id] = ts
	return ts, nil
}

// List enumerates task sets from the directory and the embedded defaults.
// Invalid files are skipped with a warning rather than failing the listing.
func (p *FileProvider) List() ([]*TaskSetInfo, error) {
	seen := make(map[string]bool)
	var infos []*TaskSetInfo

	appendSet := func(id string, data []byte) {
		if seen[id] {
			return
		}
		ts, err := parseTaskSet(id, data)
		if err != nil {
			p.log.Warn().Err(err).Str("id", id).Msg("skipping invalid task set")
			return
		}
		seen[id] = true
		infos = append(infos, &TaskSetInfo{
			ID:          ts.ID,
			Title:       ts.Title,
			Description: ts.Description,
			TaskCount:   len(ts.Tasks),
		})
	}

	if p.dir != "" {
		entries, err := os.ReadDir(p.dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read task set directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(p.dir, entry.Name()))
			if err != nil {
				continue
			}
			appendSet(strings.TrimSuffix(entry.Name(), ".json"), data)
		}
	}

	entries, err := embedded.ReadDir("tasksets")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded task sets: %w", err)
	}
	for _, entry := range entries {
		data, err := embedded.ReadFile("tasksets/" + entry.Name())
		if err != nil {
			continue
		}
		appendSet(strings.TrimSuffix(entry.Name(), ".json"), data)
	}

	return infos, nil
}

// Default returns the embedded default task set.
func (p *FileProvider) Default() *room.TaskSet {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fallback
}

func (p *FileProvider) loadEmbedded(id string) (*room.TaskSet, error) {
	data, err := embedded.ReadFile("tasksets/" + id + ".json")
	if err != nil {
		return nil, ErrTaskSetNotFound
	}
	return parseTaskSet(id, data)
}

func parseTaskSet(id string, data []byte) (*room.TaskSet, error) {
	var ts room.TaskSet
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaskSet, err)
	}
	if ts.ID == "" {
		ts.ID = id
	}
	if ts.Title == "" {
		return nil, fmt.Errorf("%w: missing title", ErrInvalidTaskSet)
	}
	if len(ts.Tasks) == 0 {
		return nil, fmt.Errorf("%w: no tasks", ErrInvalidTaskSet)
	}
	return &ts, nil
}
