package docgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Parumezan/toxidoc/internal/entity"
	"github.com/Parumezan/toxidoc/internal/fsutil"
	"github.com/sirupsen/logrus"
)

// ErrOutOfRange is returned when an entity's position does not exist in its file.
var ErrOutOfRange = errors.New("entity position outside file")

// Insertion is one skeleton to place before an entity's start position.
type Insertion struct {
	Entity entity.Entity
	Lines  []string
}

// FilePlan groups the insertions of one file in source order.
type FilePlan struct {
	Path       string
	Insertions []Insertion
}

// Result summarizes an Apply call.
type Result struct {
	Files      int
	Insertions int
}

// Plan selects the undocumented, uncommented entities and groups them per file.
// Files are sorted by path; entities sharing a start position get one skeleton.
func Plan(entities []entity.Entity) []FilePlan {
	byFile := make(map[string][]Insertion)
	seen := make(map[string]bool)
	for _, e := range entities {
		if !NeedsSkeleton(e) {
			continue
		}
		pos := fmt.Sprintf("%s:%d:%d", e.FilePath, e.StartLine, e.StartColumn)
		if seen[pos] {
			continue
		}
		seen[pos] = true
		byFile[e.FilePath] = append(byFile[e.FilePath], Insertion{Entity: e, Lines: Skeleton(e)})
	}

	plans := make([]FilePlan, 0, len(byFile))
	for path, insertions := range byFile {
		sort.SliceStable(insertions, func(i, j int) bool {
			a, b := insertions[i].Entity, insertions[j].Entity
			if a.StartLine != b.StartLine {
				return a.StartLine < b.StartLine
			}
			return a.StartColumn < b.StartColumn
		})
		plans = append(plans, FilePlan{Path: path, Insertions: insertions})
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Path < plans[j].Path })
	return plans
}

// Generator writes skeletons into header files, or prints them in dry-run mode.
type Generator struct {
	DryRun bool
	Out    io.Writer
	Logger *logrus.Logger
}

// Apply executes the plans. A file that cannot be rewritten stops the run.
func (g *Generator) Apply(ctx context.Context, plans []FilePlan) (*Result, error) {
	logger := g.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	out := g.Out
	if out == nil {
		out = io.Discard
	}

	result := &Result{}
	for _, plan := range plans {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if g.DryRun {
			writePlan(out, plan)
		} else if err := rewriteFile(plan); err != nil {
			return result, fmt.Errorf("failed to document %s: %w", plan.Path, err)
		}
		result.Files++
		result.Insertions += len(plan.Insertions)
		logger.WithFields(logrus.Fields{
			"file":     plan.Path,
			"entities": len(plan.Insertions),
		}).Info("generated doc skeletons")
	}
	return result, nil
}

func writePlan(w io.Writer, plan FilePlan) {
	for _, ins := range plan.Insertions {
		e := ins.Entity
		fmt.Fprintf(w, "--- %s %s %s\n", e.Location(), e.Kind, e.Name)
		indent := strings.Repeat(" ", max(e.StartColumn-1, 0))
		for _, line := range ins.Lines {
			fmt.Fprintf(w, "+ %s%s\n", indent, line)
		}
	}
}

func rewriteFile(plan FilePlan) error {
	info, err := os.Stat(plan.Path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(plan.Path)
	if err != nil {
		return err
	}
	updated, err := Insert(data, plan.Insertions)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(plan.Path, updated, info.Mode().Perm())
}

// Insert places every skeleton before its entity's start position.
//
// When only whitespace precedes the entity on its line, the block goes on the lines
// above, reusing that whitespace as indentation. Otherwise the line is split at the
// entity's column and the block is indented with spaces to that column.
func Insert(src []byte, insertions []Insertion) ([]byte, error) {
	eol := "\n"
	if bytes.Contains(src, []byte("\r\n")) {
		eol = "\r\n"
	}
	lines := strings.Split(string(src), eol)

	ordered := make([]Insertion, len(insertions))
	copy(ordered, insertions)
	// Bottom-up so earlier positions stay valid.
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Entity, ordered[j].Entity
		if a.StartLine != b.StartLine {
			return a.StartLine > b.StartLine
		}
		return a.StartColumn > b.StartColumn
	})

	for _, ins := range ordered {
		e := ins.Entity
		row := e.StartLine - 1
		col := e.StartColumn - 1
		if row < 0 || row >= len(lines) || col < 0 || col > len(lines[row]) {
			return nil, fmt.Errorf("%w: %s", ErrOutOfRange, e.Location())
		}

		line := lines[row]
		prefix, rest := line[:col], line[col:]

		var block []string
		if strings.TrimSpace(prefix) == "" {
			for _, l := range ins.Lines {
				block = append(block, prefix+l)
			}
			block = append(block, line)
		} else {
			indent := strings.Repeat(" ", col)
			block = append(block, strings.TrimRight(prefix, " \t"))
			for _, l := range ins.Lines {
				block = append(block, indent+l)
			}
			block = append(block, indent+rest)
		}

		lines = append(lines[:row], append(block, lines[row+1:]...)...)
	}

	return []byte(strings.Join(lines, eol)), nil
}
