// Package history persists the chat log between runs as a small protobuf
// encoded snapshot.
package history

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the snapshot message.
const (
	fieldSavedAt protowire.Number = 1
	fieldLine    protowire.Number = 2
)

// ErrMalformed is returned when a snapshot cannot be decoded.
var ErrMalformed = errors.New("malformed history snapshot")

// Snapshot is the saved chat log, oldest line first.
type Snapshot struct {
	SavedAt time.Time
	Lines   []string
}

// NewSnapshot returns a snapshot of lines taken at savedAt, leaving out every
// line for which skip reports true. A nil skip keeps all lines.
func NewSnapshot(lines []string, savedAt time.Time, skip func(string) bool) Snapshot {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if skip != nil && skip(line) {
			continue
		}
		kept = append(kept, line)
	}
	return Snapshot{SavedAt: savedAt, Lines: kept}
}

// Marshal encodes s.
func (s Snapshot) Marshal() []byte {
	var b []byte
	if !s.SavedAt.IsZero() {
		b = protowire.AppendTag(b, fieldSavedAt, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(s.SavedAt.Unix()))
	}
	for _, line := range s.Lines {
		b = protowire.AppendTag(b, fieldLine, protowire.BytesType)
		b = protowire.AppendString(b, line)
	}
	return b
}

// Unmarshal decodes data into a Snapshot. Unknown fields are skipped.
func Unmarshal(data []byte) (Snapshot, error) {
	var s Snapshot
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Snapshot{}, fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldSavedAt && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Snapshot{}, fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
			}
			s.SavedAt = time.Unix(int64(v), 0)
			data = data[n:]
		case num == fieldLine && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return Snapshot{}, fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
			}
			s.Lines = append(s.Lines, v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return Snapshot{}, fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return s, nil
}

// Store reads and writes a snapshot file.
type Store struct {
	path string
}

// NewStore returns a Store for path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the snapshot file path.
func (s *Store) Path() string { return s.path }

// DefaultPath returns the snapshot path under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "AuroraChat", "history.bin"), nil
}

// Load reads the snapshot. A missing file yields an empty snapshot.
func (s *Store) Load() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read history: %w", err)
	}
	return Unmarshal(data)
}

// Save writes the snapshot atomically.
func (s *Store) Save(snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*")
	if err != nil {
		return fmt.Errorf("failed to create history file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(snap.Marshal()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}
