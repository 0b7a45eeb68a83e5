package config

import (
	"os"
	"path"
	"strings"

	"github.com/joho/godotenv"
)

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	Getwd() (string, error)
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

func (rfs *RealFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// Config file names tried in each search directory, in order.
var configFileNames = []string{"config.yml", "config.yaml"}

// Resolver handles finding and resolving config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles finds config and env files for a service.
// Returns explicit paths if provided, otherwise searches for them.
func (cr *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	dirs := searchDirs(serviceName)

	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.first(dirs, configFileNames)
	}
	if resolved.EnvFile == "" {
		// A service-specific file anywhere beats a generic one.
		resolved.EnvFile = cr.first(dirs, []string{".env." + serviceName, ".env"})
	}
	return resolved
}

// first returns the first existing candidate, trying every directory for a
// name before moving to the next name.
func (cr *Resolver) first(dirs, names []string) string {
	for _, name := range names {
		for _, dir := range dirs {
			if p := dir + "/" + name; cr.FileSystem.Exists(p) {
				return p
			}
		}
	}
	return ""
}

// searchDirs lists the directories searched for a service, relative to the
// working directory and its parent. A dashed name such as "acme-lazykit"
// also searches under its last segment ("lazykit").
func searchDirs(serviceName string) []string {
	names := []string{serviceName}
	if idx := strings.LastIndex(serviceName, "-"); idx != -1 && idx < len(serviceName)-1 {
		names = append(names, serviceName[idx+1:])
	}

	var rel []string
	for _, n := range names {
		rel = append(rel, path.Join("cmd", n))
	}
	for _, n := range names {
		rel = append(rel, path.Join("config", n))
	}
	rel = append(rel, "config", ".")

	dirs := make([]string, 0, 2*len(rel))
	for _, root := range []string{".", ".."} {
		for _, r := range rel {
			dirs = append(dirs, relativeTo(root, r))
		}
	}
	return removeDuplicates(dirs)
}

// relativeTo joins dir onto root keeping an explicit "./" prefix, which
// path.Join would otherwise strip.
func relativeTo(root, dir string) string {
	joined := path.Join(root, dir)
	if root == "." && joined != "." {
		return "./" + joined
	}
	return joined
}

// removeDuplicates removes duplicate strings from a slice, keeping order.
func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}
