// Package capture records live packet streams to replayable ndjson files and
// keeps a per-directory index of recorded sessions under .agentline/.
package capture

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

const (
	StoreDirName  = ".agentline"
	IndexFilename = "sessions.json"
)

// Index is the on-disk registry of recorded sessions for one directory.
type Index struct {
	CreatedAt time.Time       `json:"created_at"`
	Sessions  []SessionRecord `json:"sessions"`
}

// SessionRecord describes one recorded capture.
type SessionRecord struct {
	// Path to the capture file, relative paths resolve against the index
	// directory.
	Path string `json:"path"`
	// Source is where the packets came from, typically the stream URL.
	Source    string    `json:"source,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Packets   int       `json:"packets"`
	// Completed is set when the stream's stop packet was observed; an
	// incomplete capture usually means the connection dropped.
	Completed bool `json:"completed"`
}

func IndexPath(root string) string {
	return filepath.Join(root, StoreDirName, IndexFilename)
}

// LoadIndex reads the session index; a missing file is an empty index.
func LoadIndex(root string) (*Index, error) {
	b, err := os.ReadFile(IndexPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &Index{CreatedAt: time.Now()}, nil
		}
		return nil, errors.Wrap(err, "read session index")
	}
	var idx Index
	if err := json.Unmarshal(b, &idx); err != nil {
		return nil, errors.Wrap(err, "parse session index")
	}
	return &idx, nil
}

func SaveIndex(root string, idx *Index) error {
	if idx == nil {
		return errors.New("nil index")
	}
	dir := filepath.Dir(IndexPath(root))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "mkdir session store")
	}
	b, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal session index")
	}
	if err := os.WriteFile(IndexPath(root), b, 0o644); err != nil {
		return errors.Wrap(err, "write session index")
	}
	return nil
}

// Upsert replaces the record with the same path, or appends.
func (idx *Index) Upsert(rec SessionRecord) {
	for i := range idx.Sessions {
		if idx.Sessions[i].Path == rec.Path {
			idx.Sessions[i] = rec
			return
		}
	}
	idx.Sessions = append(idx.Sessions, rec)
}

// Remove drops the record with the given path; unknown paths are a no-op.
func (idx *Index) Remove(path string) {
	for i := range idx.Sessions {
		if idx.Sessions[i].Path == path {
			idx.Sessions = append(idx.Sessions[:i], idx.Sessions[i+1:]...)
			return
		}
	}
}
