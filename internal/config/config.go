// Package config handles workspace and global configuration.
package config

import (
	"os"
	"path/filepath"
)

// Workspace state lives in a .bibkeep directory next to the
// bibliography file, so every bib file carries its own cache and
// rejection history.
const (
	WorkspaceDir = ".bibkeep"
	CacheDir     = "cache"
	RejectedDB   = "rejected.db"
	MappingFile  = "author_sites.json"
)

// WorkspacePath returns the .bibkeep directory for a bibliography file.
func WorkspacePath(bibPath string) string {
	return filepath.Join(filepath.Dir(bibPath), WorkspaceDir)
}

// CachePath returns the lookup cache directory for a bibliography file.
func CachePath(bibPath string) string {
	return filepath.Join(WorkspacePath(bibPath), CacheDir)
}

// RejectedPath returns the rejection database path for a bibliography
// file.
func RejectedPath(bibPath string) string {
	return filepath.Join(WorkspacePath(bibPath), RejectedDB)
}

// MappingPath returns the author-to-site mapping path for a
// bibliography file.
func MappingPath(bibPath string) string {
	return filepath.Join(filepath.Dir(bibPath), MappingFile)
}

// EnsureWorkspace creates the .bibkeep directory if needed.
func EnsureWorkspace(bibPath string) error {
	return os.MkdirAll(WorkspacePath(bibPath), 0755)
}

// ExpandPath expands a leading ~ to the user's home directory. Paths
// without the prefix pass through unchanged.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
