package character

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// crewFile is the on-disk shape of a crew roster file.
type crewFile struct {
	Crew []Template `yaml:"crew"`
}

// LoadTemplates reads every *.yaml file in dir and returns the crew templates
// keyed by ID. Unknown fields are rejected.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil map, or an error naming the offending file.
func LoadTemplates(dir string) (map[string]Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading crew dir %q: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make(map[string]Template)
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var f crewFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, t := range f.Crew {
			if _, dup := out[t.ID]; dup {
				return nil, fmt.Errorf("parsing %q: duplicate crew id %q", path, t.ID)
			}
			out[t.ID] = t
		}
	}
	return out, nil
}
