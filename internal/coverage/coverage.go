// Package coverage computes documentation coverage over a reconciled entity set.
package coverage

import (
	"sort"

	"github.com/Parumezan/toxidoc/internal/entity"
)

// FileCoverage is the documented/total pair of one file.
type FileCoverage struct {
	Path       string `json:"path"`
	Documented int    `json:"documented"`
	Total      int    `json:"total"`
}

// Percent returns the documented share in percent. A file without entities is fully covered.
func (f FileCoverage) Percent() float64 {
	return percent(f.Documented, f.Total)
}

// StateCounts counts entities per lifecycle state.
type StateCounts struct {
	Unchanged int `json:"unchanged"`
	Modified  int `json:"modified"`
	Added     int `json:"added"`
	Removed   int `json:"removed"`
}

func (c *StateCounts) add(s entity.State) {
	switch s {
	case entity.StateUnchanged:
		c.Unchanged++
	case entity.StateModified:
		c.Modified++
	case entity.StateAdded:
		c.Added++
	case entity.StateRemoved:
		c.Removed++
	}
}

// Report is the coverage of a merged entity set.
type Report struct {
	// Removed entities are excluded from every count below but Counts.Removed.
	Total        int
	Documented   int
	Undocumented int
	Files        []FileCoverage
	Counts       StateCounts

	// Entities are the non-removed entities, Removed the removed ones, both in merged order.
	Entities []entity.Entity
	Removed  []entity.Entity

	// MinCoverage, when set, replaces "nothing undocumented" as the pass condition
	// with "coverage percent >= MinCoverage".
	MinCoverage *float64
}

// Evaluate computes the coverage report of a merged entity set.
func Evaluate(merged []entity.Entity) *Report {
	r := &Report{
		Files:    []FileCoverage{},
		Entities: []entity.Entity{},
		Removed:  []entity.Entity{},
	}
	perFile := make(map[string]*FileCoverage)

	for _, e := range merged {
		r.Counts.add(e.State)
		if e.State == entity.StateRemoved {
			r.Removed = append(r.Removed, e)
			continue
		}
		r.Entities = append(r.Entities, e)

		fc, ok := perFile[e.FilePath]
		if !ok {
			fc = &FileCoverage{Path: e.FilePath}
			perFile[e.FilePath] = fc
		}
		r.Total++
		fc.Total++
		if e.IsDocumented() {
			r.Documented++
			fc.Documented++
		}
	}
	r.Undocumented = r.Total - r.Documented

	for _, fc := range perFile {
		r.Files = append(r.Files, *fc)
	}
	sort.Slice(r.Files, func(i, j int) bool {
		return r.Files[i].Path < r.Files[j].Path
	})
	return r
}

// Percent returns the documented share in percent; 100 when there is nothing to document.
func (r *Report) Percent() float64 {
	return percent(r.Documented, r.Total)
}

// Passed reports whether the run meets the coverage requirement.
func (r *Report) Passed() bool {
	if r.MinCoverage != nil {
		return r.Percent() >= *r.MinCoverage
	}
	return r.Undocumented == 0
}

// ExitCode is the process status for the report: 0 when passed, 1 otherwise.
func (r *Report) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}

// UndocumentedEntities returns the non-removed entities without a brief comment.
func (r *Report) UndocumentedEntities() []entity.Entity {
	var out []entity.Entity
	for _, e := range r.Entities {
		if !e.IsDocumented() {
			out = append(out, e)
		}
	}
	return out
}

func percent(documented, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(documented) * 100 / float64(total)
}
