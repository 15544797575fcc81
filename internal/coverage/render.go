package coverage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Parumezan/toxidoc/internal/entity"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Failure is a file that was skipped during extraction.
type Failure struct {
	Path    string `json:"path"`
	Message string `json:"error"`
}

// Meta carries run context printed alongside the report.
type Meta struct {
	SnapshotPath string
	LastSaved    time.Time // zero when there was no previous snapshot
	Failures     []Failure
	Duration     time.Duration
}

// Styles holds the lipgloss styles used by the text renderer.
type Styles struct {
	Title        lipgloss.Style
	Muted        lipgloss.Style
	Path         lipgloss.Style
	Undocumented lipgloss.Style
	Success      lipgloss.Style
	Error        lipgloss.Style
	Warning      lipgloss.Style
	States       map[string]lipgloss.Style
}

// ColorStyles returns the styles used when writing to a terminal.
func ColorStyles() *Styles {
	return &Styles{
		Title:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Path:         lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		Undocumented: lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		Success:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
		Error:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8")),
		Warning:      lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		States: map[string]lipgloss.Style{
			"Modified": lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
			"Added":    lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
			"Removed":  lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		},
	}
}

// PlainStyles returns styles that render text unchanged, for pipes and files.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Title:        plain,
		Muted:        plain,
		Path:         plain,
		Undocumented: plain,
		Success:      plain,
		Error:        plain,
		Warning:      plain,
		States:       map[string]lipgloss.Style{},
	}
}

// StylesFor picks colour styles when w is a terminal and plain styles otherwise.
func StylesFor(w io.Writer) *Styles {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return ColorStyles()
	}
	return PlainStyles()
}

func (s *Styles) state(name string) string {
	if style, ok := s.States[name]; ok {
		return style.Render(name)
	}
	return name
}

// TextRenderer writes a human readable report.
type TextRenderer struct {
	Styles *Styles

	// OnlyUndocumented limits the entity listing to undocumented entities.
	OnlyUndocumented bool

	// Details appends a full description of every undocumented entity.
	Details bool
}

// Render writes the report.
func (t *TextRenderer) Render(w io.Writer, r *Report, meta Meta) error {
	s := t.Styles
	if s == nil {
		s = PlainStyles()
	}

	var b strings.Builder

	fmt.Fprintln(&b, s.Title.Render("Documentation coverage"))
	if meta.SnapshotPath != "" {
		last := "never"
		if !meta.LastSaved.IsZero() {
			last = meta.LastSaved.Local().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintln(&b, s.Muted.Render(fmt.Sprintf("Snapshot %s, last saved %s", meta.SnapshotPath, last)))
	}
	b.WriteString("\n")

	for _, e := range r.Entities {
		documented := e.IsDocumented()
		if t.OnlyUndocumented && documented {
			continue
		}
		line := fmt.Sprintf("%s %s %s %s", s.Path.Render(e.Location()), e.Kind, e.Name, s.state(e.State.String()))
		if !documented {
			line += " " + s.Undocumented.Render("undocumented")
		}
		fmt.Fprintln(&b, line)
	}

	if t.Details {
		if missing := r.UndocumentedEntities(); len(missing) > 0 {
			fmt.Fprintf(&b, "\n%s\n", s.Title.Render("Undocumented details"))
			for _, e := range missing {
				fmt.Fprintf(&b, "\n%s", e.String())
			}
		}
	}

	if len(r.Removed) > 0 {
		fmt.Fprintf(&b, "\n%s\n", s.Title.Render("Removed"))
		for _, e := range r.Removed {
			fmt.Fprintf(&b, "%s %s %s %s\n", s.Path.Render(e.Location()), e.Kind, e.Name, s.state(e.State.String()))
		}
	}

	if len(meta.Failures) > 0 {
		fmt.Fprintf(&b, "\n%s\n", s.Warning.Render(fmt.Sprintf("Skipped %d file(s)", len(meta.Failures))))
		for _, f := range meta.Failures {
			fmt.Fprintf(&b, "  %s: %s\n", f.Path, f.Message)
		}
	}

	if len(r.Files) > 0 {
		fmt.Fprintf(&b, "\n%s\n", s.Title.Render("Files"))
		width := 0
		for _, f := range r.Files {
			width = max(width, len(f.Path))
		}
		for _, f := range r.Files {
			fmt.Fprintf(&b, "  %-*s %d/%d (%.1f%%)\n", width, f.Path, f.Documented, f.Total, f.Percent())
		}
	}

	fmt.Fprintf(&b, "\nUnchanged: %d  Modified: %d  Added: %d  Removed: %d\n",
		r.Counts.Unchanged, r.Counts.Modified, r.Counts.Added, r.Counts.Removed)
	fmt.Fprintf(&b, "Documented: %d/%d (%.1f%%)\n", r.Documented, r.Total, r.Percent())
	if r.MinCoverage != nil {
		fmt.Fprintf(&b, "Required: %.1f%%\n", *r.MinCoverage)
	}

	if r.Passed() {
		fmt.Fprintln(&b, s.Success.Render("PASS"))
	} else {
		fmt.Fprintln(&b, s.Error.Render(fmt.Sprintf("FAIL: %d undocumented", r.Undocumented)))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type jsonEntity struct {
	Location      string   `json:"location"`
	FilePath      string   `json:"file_path"`
	Line          int      `json:"line"`
	Column        int      `json:"column"`
	Kind          string   `json:"type"`
	Name          string   `json:"name"`
	OverloadIndex int      `json:"overload_index"`
	State         string   `json:"state"`
	Documented    bool     `json:"documented"`
	Arguments     []string `json:"arguments,omitempty"`
	ReturnType    string   `json:"return_type,omitempty"`
}

type jsonReport struct {
	Total        int            `json:"total"`
	Documented   int            `json:"documented"`
	Undocumented int            `json:"undocumented"`
	Coverage     float64        `json:"coverage"`
	MinCoverage  *float64       `json:"min_coverage,omitempty"`
	Passed       bool           `json:"passed"`
	States       StateCounts    `json:"states"`
	Files        []FileCoverage `json:"files"`
	Entities     []jsonEntity   `json:"entities"`
	Removed      []jsonEntity   `json:"removed"`
	Failures     []Failure      `json:"failures"`
	LastSaved    int64          `json:"last_saved_timestamp,omitempty"`
	DurationMS   int64          `json:"duration_ms"`
}

// JSONRenderer writes the report as a single JSON document.
type JSONRenderer struct{}

// Render writes the report.
func (JSONRenderer) Render(w io.Writer, r *Report, meta Meta) error {
	out := jsonReport{
		Total:        r.Total,
		Documented:   r.Documented,
		Undocumented: r.Undocumented,
		Coverage:     r.Percent(),
		MinCoverage:  r.MinCoverage,
		Passed:       r.Passed(),
		States:       r.Counts,
		Files:        r.Files,
		Entities:     make([]jsonEntity, 0, len(r.Entities)),
		Removed:      make([]jsonEntity, 0, len(r.Removed)),
		Failures:     meta.Failures,
		DurationMS:   meta.Duration.Milliseconds(),
	}
	if out.Failures == nil {
		out.Failures = []Failure{}
	}
	if !meta.LastSaved.IsZero() {
		out.LastSaved = meta.LastSaved.Unix()
	}

	for _, list := range []struct {
		src []entity.Entity
		dst *[]jsonEntity
	}{{r.Entities, &out.Entities}, {r.Removed, &out.Removed}} {
		for _, e := range list.src {
			*list.dst = append(*list.dst, jsonEntity{
				Location:      e.Location(),
				FilePath:      e.FilePath,
				Line:          e.StartLine,
				Column:        e.StartColumn,
				Kind:          e.Kind.String(),
				Name:          e.Name,
				OverloadIndex: e.OverloadIndex,
				State:         e.State.String(),
				Documented:    e.IsDocumented(),
				Arguments:     e.Arguments,
				ReturnType:    e.ReturnType,
			})
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// Renderer writes a coverage report in some format.
type Renderer interface {
	Render(w io.Writer, r *Report, meta Meta) error
}

// TextOptions tunes the text report. The JSON report ignores them.
type TextOptions struct {
	OnlyUndocumented bool
	Details          bool
}

// NewRenderer returns the renderer for a format name ("text" or "json").
func NewRenderer(format string, styles *Styles, opts TextOptions) (Renderer, error) {
	switch format {
	case "text", "":
		return &TextRenderer{Styles: styles, OnlyUndocumented: opts.OnlyUndocumented, Details: opts.Details}, nil
	case "json":
		return JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q (use text or json)", format)
	}
}
