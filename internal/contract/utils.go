package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/huangsam/footprint/schema"
)

// Color variables for console output.
var (
	RemoteColor    = color.New(color.FgGreen, color.Bold) // RemoteColor marks estimates from a remote provider.
	HeuristicColor = color.New(color.FgYellow)            // HeuristicColor marks heuristic fallbacks.
	MemoryColor    = color.New(color.FgMagenta, color.Bold)
	CPUColor       = color.New(color.FgRed, color.Bold)
	BandwidthColor = color.New(color.FgCyan, color.Bold)
	NoneColor      = color.New(color.Faint)
)

// GetProvenanceLabel returns a colored provenance label for console output (table).
func GetProvenanceLabel(p schema.Provenance) string {
	switch p {
	case schema.RemoteProvenance:
		return RemoteColor.Sprint(string(p))
	case schema.HeuristicProvenance:
		return HeuristicColor.Sprint(string(p))
	default:
		return string(p)
	}
}

// GetPriorityLabel returns a colored label for the scaling priority dimension.
func GetPriorityLabel(d schema.ScalingDimension) string {
	switch d {
	case schema.ScaleMemory:
		return MemoryColor.Sprint(string(d))
	case schema.ScaleCPU:
		return CPUColor.Sprint(string(d))
	case schema.ScaleBandwidth:
		return BandwidthColor.Sprint(string(d))
	default:
		return NoneColor.Sprint(string(d))
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// It supports simple glob patterns (using filepath.Match) when the pattern
// contains wildcard characters (*, ?, [ ]). Patterns ending with '/' match any
// path segment prefix. Patterns starting with '.' are treated as suffix matches.
// A user can provide patterns like "vendor/", "node_modules/", "*.min.js".
func ShouldIgnore(path string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		// If the pattern contains glob characters, try filepath.Match.
		if strings.ContainsAny(ex, "*?[") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, path); err == nil && ok {
				return true
			}
			// Also try matching against the base filename (e.g. *.min.js)
			if ok, err := filepath.Match(pat, filepath.Base(path)); err == nil && ok {
				return true
			}
			continue
		}

		// Handle prefix, suffix, or substring matches
		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(path, ex) || strings.Contains(path, "/"+ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(path, ex) {
				return true
			}
		case strings.Contains(path, ex):
			return true
		}
	}
	return false
}

// MatchesSkipPattern reports whether a file name matches one of the skip patterns.
// Glob patterns are matched against the base name; anything else is a substring.
func MatchesSkipPattern(name string, patterns []string) bool {
	base := strings.ToLower(filepath.Base(name))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "*?[") {
			if ok, err := filepath.Match(p, base); err == nil && ok {
				return true
			}
			continue
		}
		if strings.Contains(base, p) {
			return true
		}
	}
	return false
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logrus.WithError(err).Fatal(msg)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	logrus.WithError(err).Warn(msg)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for estimate cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".footprint_cache.db"
	}
	return filepath.Join(homeDir, ".footprint_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for analysis history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".footprint_history.db"
	}
	return filepath.Join(homeDir, ".footprint_history.db")
}

// NormalizeRepoPath normalizes a user-provided path relative to the repo root
// and ensures it's within the repository boundaries.
func NormalizeRepoPath(repoPath, userPath string) (string, error) {
	// Handle absolute paths by making them relative to repo
	if filepath.IsAbs(userPath) {
		relPath, err := filepath.Rel(repoPath, userPath)
		if err != nil {
			return "", fmt.Errorf("path is outside repository: %s", userPath)
		}
		userPath = relPath
	}

	// Clean the path to resolve any .. or . components
	cleanPath := filepath.Clean(userPath)

	// Ensure the path doesn't go outside the repo (no leading .. after cleaning)
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path is outside repository: %s", userPath)
	}

	// Convert to forward slashes for consistency with the structure summary
	normalized := filepath.ToSlash(cleanPath)

	// Remove leading ./ if present
	normalized = strings.TrimPrefix(normalized, "./")

	return normalized, nil
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
