package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

const registryFileName = ".javanav.conf"

// ProjectEntry is one project recorded by the index command.
type ProjectEntry struct {
	Name       string    `yaml:"name"`
	Root       string    `yaml:"root"`
	SourceRoot string    `yaml:"source_root"`
	Methods    int       `yaml:"methods"`
	IndexedAt  time.Time `yaml:"indexed_at"`
}

type registryFile struct {
	Projects []ProjectEntry `yaml:"projects"`
}

// RegistryPath returns the path to the global project registry file (~/.javanav.conf).
func RegistryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, registryFileName)
}

// RegisterProject adds or updates a project entry in the global registry,
// keyed by Root. An empty Name defaults to the root's base name.
func RegisterProject(entry ProjectEntry) error {
	if entry.Name == "" {
		entry.Name = filepath.Base(entry.Root)
	}
	if entry.IndexedAt.IsZero() {
		entry.IndexedAt = time.Now().UTC()
	}

	entries := ListProjects()
	found := false
	for i := range entries {
		if entries[i].Root == entry.Root {
			entries[i] = entry
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return writeRegistry(entries)
}

// LookupProject finds a registry entry whose Root matches or is a parent of the given path.
func LookupProject(path string) (*ProjectEntry, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	for _, entry := range ListProjects() {
		entryRoot, err := filepath.Abs(entry.Root)
		if err != nil {
			entryRoot = entry.Root
		}
		if absPath == entryRoot || strings.HasPrefix(absPath, entryRoot+string(filepath.Separator)) {
			return &entry, true
		}
	}
	return nil, false
}

// ListProjects returns all registered projects from the global registry.
func ListProjects() []ProjectEntry {
	regPath := RegistryPath()
	if regPath == "" {
		return nil
	}

	data, err := os.ReadFile(regPath)
	if err != nil {
		return nil
	}

	var reg registryFile
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil
	}
	return reg.Projects
}

// PruneProjects drops entries whose root directory no longer exists and
// returns them.
func PruneProjects() ([]ProjectEntry, error) {
	var keep, gone []ProjectEntry
	for _, e := range ListProjects() {
		if info, err := os.Stat(e.Root); err == nil && info.IsDir() {
			keep = append(keep, e)
		} else {
			gone = append(gone, e)
		}
	}
	if len(gone) == 0 {
		return nil, nil
	}
	return gone, writeRegistry(keep)
}

// writeRegistry replaces the registry file through a rename so concurrent
// readers never see a partial file.
func writeRegistry(entries []ProjectEntry) error {
	regPath := RegistryPath()
	if regPath == "" {
		return nil
	}

	data, err := yaml.Marshal(&registryFile{Projects: entries})
	if err != nil {
		return err
	}
	tmp := regPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, regPath)
}
