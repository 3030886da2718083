// Package skills derives the skill list used to look up course
// recommendations from the highlight tags of matched jobs.
package skills

import (
	"net/url"
	"strings"
)

// Highlighted is a matched job that carries highlight tags.
type Highlighted interface {
	HighlightTags() []string
}

// Aggregate flattens the skills implied by every highlight tag of every job,
// drops empty entries and removes duplicates, keeping first-seen order.
// When nothing is found and major is non-empty the result is [major].
func Aggregate[J Highlighted](jobs []J, table Table, major string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0)

	for _, job := range jobs {
		for _, tag := range job.HighlightTags() {
			for _, skill := range table.Lookup(tag, major) {
				skill = strings.TrimSpace(skill)
				if skill == "" || seen[skill] {
					continue
				}
				seen[skill] = true
				result = append(result, skill)
			}
		}
	}

	if len(result) == 0 {
		if m := strings.TrimSpace(major); m != "" {
			return []string{m}
		}
	}
	return result
}

// CourseQuery encodes skills as repeated skills= parameters.
func CourseQuery(skills []string) url.Values {
	q := url.Values{}
	for _, s := range skills {
		q.Add("skills", s)
	}
	return q
}
