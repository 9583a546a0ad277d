package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Summary is the per-file diagnostic printed after processing.
type Summary struct {
	Input   string `json:"input"`
	Output  string `json:"output,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`

	RemovedCleaning   int `json:"removed_cleaning"`
	RemovedReparsing  int `json:"removed_reparsing"`
	DroppedAggregates int `json:"dropped_aggregates"`

	Operations    int `json:"operations"`
	UnknownEvents int `json:"unknown_events"`
	Aggregates    int `json:"aggregates"`
	Rows          int `json:"rows"`
}

// Renderer writes file summaries to an output stream.
type Renderer interface {
	Render(s Summary) error
}

// ---------------------------------------------------------------------------
// Text Renderer (styled terminal output)
// ---------------------------------------------------------------------------

var (
	styleFile    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true) // cyan
	styleArrow   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleCount   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("220")) // yellow
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
)

// TextRenderer prints one block per file.
type TextRenderer struct {
	w io.Writer
}

func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

func (r *TextRenderer) Render(s Summary) error {
	head := styleFile.Render(s.Input)

	switch {
	case s.Error != "":
		_, err := fmt.Fprintf(r.w, "%s %s\n", head, styleError.Render("failed: "+s.Error))
		return err
	case s.Skipped:
		_, err := fmt.Fprintf(r.w, "%s %s\n", head, styleSkipped.Render("unchanged, skipped"))
		return err
	}

	removed := fmt.Sprintf("  removed %s lines during cleaning, %s lines during re-parsing",
		count(s.RemovedCleaning, true), count(s.RemovedReparsing, true))
	dropped := fmt.Sprintf("  dropped %s aggregates with missing total/proc time",
		count(s.DroppedAggregates, true))
	totals := fmt.Sprintf("  %s operations, %s unknown events, %s aggregates, %s rows",
		count(s.Operations, false), count(s.UnknownEvents, true), count(s.Aggregates, false), count(s.Rows, false))

	_, err := fmt.Fprintf(r.w, "%s %s %s\n%s\n%s\n%s\n",
		head, styleArrow.Render("->"), s.Output, removed, dropped, totals)
	return err
}

// count styles n, highlighting non-zero loss counters.
func count(n int, loss bool) string {
	if loss && n > 0 {
		return styleWarn.Render(fmt.Sprint(n))
	}
	return styleCount.Render(fmt.Sprint(n))
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints each summary as a single JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

func (r *JSONRenderer) Render(s Summary) error {
	return r.enc.Encode(s)
}
