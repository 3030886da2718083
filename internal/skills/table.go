package skills

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Highlight tags the matching backend attaches to a job card.
const (
	TagMajorMatch = "전공 일치"
	TagSkillMatch = "스킬 일치"
	TagRemoteOK   = "재택 가능"
)

// MajorPlaceholder in a table entry expands to the profile's major.
const MajorPlaceholder = "$major"

// Table maps a highlight tag to the canonical skill names it implies.
type Table map[string][]string

// DefaultTable returns the built-in highlight table.
func DefaultTable() Table {
	return Table{
		TagMajorMatch: {MajorPlaceholder},
		TagSkillMatch: {"Backend", "Spring", "API"},
		TagRemoteOK:   {"Remote work"},
	}
}

// Lookup returns the skills implied by tag. Unknown tags yield nil and the
// major placeholder expands to major (possibly empty).
func (t Table) Lookup(tag, major string) []string {
	entries, ok := t[tag]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e == MajorPlaceholder {
			e = major
		}
		out = append(out, e)
	}
	return out
}

// tableFile is the on-disk shape of a highlight table.
type tableFile struct {
	Highlights map[string][]string `yaml:"highlights"`
	Replace    bool                `yaml:"replace"`
}

// LoadTable reads a YAML highlight table. Entries extend the built-in table
// unless the file sets replace: true.
//
//	replace: false
//	highlights:
//	  "스킬 일치": [Backend, Spring, API]
//	  "경력 일치": [Kotlin]
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skill table %s: %w", path, err)
	}
	return ParseTable(data)
}

// ParseTable parses YAML highlight table content.
func ParseTable(data []byte) (Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse skill table: %w", err)
	}

	table := DefaultTable()
	if f.Replace {
		table = Table{}
	}
	for tag, entries := range f.Highlights {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return nil, fmt.Errorf("skill table has an empty highlight tag")
		}
		table[tag] = entries
	}
	return table, nil
}
