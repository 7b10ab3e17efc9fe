// Package store persists the registry and per-game metadata records on disk.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/naka-gawa/game-center/internal/domain"
)

const filePerms = 0o644

// FileStore reads and writes the repository's metadata files under a root
// directory. Every write replaces the whole file atomically.
type FileStore struct {
	root     string
	gamesDir string
}

// NewFileStore creates a FileStore rooted at the repository root. gamesDir is
// the directory, relative to root, that holds one directory per game.
func NewFileStore(root, gamesDir string) *FileStore {
	return &FileStore{root: root, gamesDir: gamesDir}
}

// RegistryPath returns the location of the registry file.
func (s *FileStore) RegistryPath() string {
	return filepath.Join(s.root, domain.RegistryFile)
}

// GameInfoPath returns the location of a game's metadata record.
func (s *FileStore) GameInfoPath(gameID string) string {
	return filepath.Join(s.root, filepath.FromSlash(s.gamesDir), gameID, domain.GameInfoFile)
}

// LoadGameInfo reads a game's metadata record. It reports false without an
// error when the record does not exist yet.
func (s *FileStore) LoadGameInfo(gameID string) (*domain.GameInfo, bool, error) {
	data, err := os.ReadFile(s.GameInfoPath(gameID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s for %s: %w", domain.GameInfoFile, gameID, err)
	}
	info, err := DecodeGameInfo(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse %s for %s: %w", domain.GameInfoFile, gameID, err)
	}
	return info, true, nil
}

// SaveGameInfo writes a game's metadata record. The game directory must exist.
func (s *FileStore) SaveGameInfo(gameID string, info *domain.GameInfo) error {
	data, err := EncodeGameInfo(info)
	if err != nil {
		return fmt.Errorf("failed to encode %s for %s: %w", domain.GameInfoFile, gameID, err)
	}
	if err := writeFile(s.GameInfoPath(gameID), data); err != nil {
		return fmt.Errorf("failed to write %s for %s: %w", domain.GameInfoFile, gameID, err)
	}
	return nil
}

// LoadRegistry reads and parses the registry file.
func (s *FileStore) LoadRegistry() (*domain.Registry, error) {
	data, err := os.ReadFile(s.RegistryPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", domain.RegistryFile, err)
	}
	var reg domain.Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", domain.RegistryFile, err)
	}
	return &reg, nil
}

// SaveRegistry writes the registry as indented JSON.
func (s *FileStore) SaveRegistry(reg *domain.Registry) error {
	data, err := EncodeRegistry(reg)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", domain.RegistryFile, err)
	}
	if err := writeFile(s.RegistryPath(), data); err != nil {
		return fmt.Errorf("failed to write %s: %w", domain.RegistryFile, err)
	}
	return nil
}

// DecodeGameInfo parses a YAML metadata record.
func DecodeGameInfo(data []byte) (*domain.GameInfo, error) {
	var info domain.GameInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	if info.PullRequests == nil {
		info.PullRequests = []domain.PullRequest{}
	}
	return &info, nil
}

// EncodeGameInfo renders a metadata record as YAML with two-space indentation.
func EncodeGameInfo(info *domain.GameInfo) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(info); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeRegistry renders the registry as two-space indented JSON with a
// trailing newline. HTML characters are written as-is.
func EncodeRegistry(reg *domain.Registry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return err
	}
	// atomic.WriteFile leaves new files with the temp file's mode.
	return os.Chmod(path, filePerms)
}
