// Package prefs persists comment to project mappings as a JSON file so they
// can be shared or edited outside the database.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/jask/projectmatch/internal/database/repository"
)

const mappingsFile = "project_mappings.json"

type fileMapping struct {
	Comment  string `json:"comment"`
	Category string `json:"category,omitempty"`
	Project  string `json:"project"`
}

// DefaultMappingsPath is the mappings file under the user config dir.
func DefaultMappingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "projectmatch", mappingsFile), nil
}

// SaveMappings writes ms to path atomically, sorted for stable diffs.
func SaveMappings(path string, ms []repository.Mapping) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out := make([]fileMapping, 0, len(ms))
	for _, m := range ms {
		out = append(out, fileMapping{Comment: m.Comment, Category: m.Category, Project: m.Project})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Comment != out[j].Comment {
			return out[i].Comment < out[j].Comment
		}
		return out[i].Category < out[j].Category
	})
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadMappings reads path. A missing file yields no mappings and no error.
func LoadMappings(path string) ([]repository.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var in []fileMapping
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	out := make([]repository.Mapping, 0, len(in))
	for _, m := range in {
		out = append(out, repository.Mapping{Comment: m.Comment, Category: m.Category, Project: m.Project})
	}
	return out, nil
}
