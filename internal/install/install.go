// Package install probes a game installation directory.
package install

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	clientExecutable = "LeagueClient.exe"
	gameDir          = "Game"
	lockfileName     = "lockfile"
)

// IsValid reports whether path looks like a game installation, i.e. holds
// the client executable.
func IsValid(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(path, clientExecutable))
	return err == nil && !info.IsDir()
}

// GameDir is the game asset directory the patcher targets.
func GameDir(path string) string {
	return filepath.Join(path, gameDir)
}

// LockfilePath is where the running client publishes its API credentials.
func LockfilePath(path string) string {
	return filepath.Join(path, lockfileName)
}
