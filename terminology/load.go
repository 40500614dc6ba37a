package terminology

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofhir/fhir/r4"
)

// LoadStats contains statistics about concept loading.
type LoadStats struct {
	CodeSystemsLoaded int
	Errors            int
}

// LoadFromJSON loads a CodeSystem resource or every CodeSystem in a
// Bundle.
func (r *Registry) LoadFromJSON(data []byte) (*LoadStats, error) {
	stats := &LoadStats{}

	var probe struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch probe.ResourceType {
	case "Bundle":
		var b bundle
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to parse Bundle: %w", err)
		}
		for _, entry := range b.Entry {
			if entry.Resource == nil {
				continue
			}
			if err := json.Unmarshal(entry.Resource, &probe); err != nil || probe.ResourceType != "CodeSystem" {
				continue
			}
			if err := r.loadRaw(entry.Resource); err != nil {
				stats.Errors++
				continue
			}
			stats.CodeSystemsLoaded++
		}

	case "CodeSystem":
		if err := r.loadRaw(data); err != nil {
			stats.Errors++
			return stats, err
		}
		stats.CodeSystemsLoaded++

	default:
		return nil, fmt.Errorf("unsupported resourceType: %s", probe.ResourceType)
	}

	return stats, nil
}

func (r *Registry) loadRaw(data []byte) error {
	var cs r4.CodeSystem
	if err := json.Unmarshal(data, &cs); err != nil {
		return fmt.Errorf("failed to parse CodeSystem: %w", err)
	}
	_, err := r.LoadR4CodeSystem(&cs)
	return err
}

// LoadFromFile loads a CodeSystem or Bundle JSON file.
func (r *Registry) LoadFromFile(path string) (*LoadStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return r.LoadFromJSON(data)
}

// LoadFromDirectory loads every CodeSystem-*.json file in dir.
func (r *Registry) LoadFromDirectory(dir string) (*LoadStats, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	stats := &LoadStats{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "CodeSystem-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			stats.Errors++
			continue
		}
		if err := r.loadRaw(data); err != nil {
			stats.Errors++
			continue
		}
		stats.CodeSystemsLoaded++
	}
	return stats, nil
}

// bundleEntry represents an entry in a FHIR Bundle.
type bundleEntry struct {
	Resource json.RawMessage `json:"resource"`
}

// bundle represents a minimal FHIR Bundle structure.
type bundle struct {
	ResourceType string        `json:"resourceType"`
	Entry        []bundleEntry `json:"entry"`
}
