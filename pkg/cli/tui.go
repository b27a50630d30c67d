package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/notes"
)

// Theme defines the color scheme for terminal rendering.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Accent  lipgloss.Color // Team names
	Dim     lipgloss.Color // Dates and secondary text
}

// DefaultTheme is the default cyan and violet theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#22d3ee"),
	Accent:  lipgloss.Color("#a78bfa"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title   lipgloss.Style
	Date    lipgloss.Style
	Heading lipgloss.Style
	Team    lipgloss.Style
	Body    lipgloss.Style
	Border  lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Date:    lipgloss.NewStyle().Foreground(t.Dim),
		Heading: lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Underline(true),
		Team:    lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Body:    lipgloss.NewStyle(),
		Border:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
	}
}

// NotesView renders meeting notes for the terminal.
type NotesView struct {
	Styles Styles
	Notes  *notes.Notes

	// Width is the total width including the border. Zero means 80.
	Width int

	// Transcript includes the full transcript section.
	Transcript bool
}

// Render renders the view to a string.
func (v NotesView) Render() string {
	n := v.Notes
	if n == nil {
		return ""
	}
	width := v.Width
	if width <= 0 {
		width = 80
	}
	// Border (2) and padding (2).
	inner := max(width-4, 10)
	wrap := func(s lipgloss.Style, text string, indent int) string {
		return s.Width(inner - indent).Render(text)
	}
	pad := func(text string, indent int) string {
		prefix := strings.Repeat(" ", indent)
		lines := strings.Split(text, "\n")
		for i, l := range lines {
			lines[i] = prefix + l
		}
		return strings.Join(lines, "\n")
	}

	labels := notes.LabelsFor(n.Lang())
	var parts []string

	parts = append(parts, wrap(v.Styles.Title, n.Title, 0))
	parts = append(parts, v.Styles.Date.Render(n.Date.Format(notes.DateLayout)+"  ·  "+n.ShortID()))
	parts = append(parts, "")

	parts = append(parts, v.Styles.Heading.Render(labels.KeySummary))
	for _, s := range n.Summary {
		parts = append(parts, bullet("•", wrap(v.Styles.Body, s, 2)))
	}
	parts = append(parts, "")

	parts = append(parts, v.Styles.Heading.Render(labels.ActionItems))
	for _, g := range n.GroupTasks() {
		parts = append(parts, v.Styles.Team.Render(g.Team))
		for _, a := range g.Actions {
			parts = append(parts, pad(bullet("-", wrap(v.Styles.Body, a, 4)), 2))
		}
	}

	if n.AudioPath != "" {
		parts = append(parts, "", v.Styles.Heading.Render(labels.Recording), wrap(v.Styles.Date, n.AudioPath, 0))
	}

	if v.Transcript && n.Transcript != "" {
		parts = append(parts, "", v.Styles.Heading.Render(labels.FullTranscript),
			wrap(v.Styles.Body, strings.TrimSpace(n.Transcript), 0))
	}

	return v.Styles.Border.Width(width - 2).Render(strings.Join(parts, "\n"))
}

// bullet prefixes the first line of text with mark and indents the rest
// to align with it.
func bullet(mark, text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if i == 0 {
			lines[i] = mark + " " + l
		} else {
			lines[i] = strings.Repeat(" ", lipgloss.Width(mark)+1) + l
		}
	}
	return strings.Join(lines, "\n")
}

// Truncate shortens s to at most width terminal cells, marking the cut
// with an ellipsis. Multi-byte and wide characters are handled.
func Truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 1 {
		return truncateString(s, width)
	}
	return truncateString(s, width-1) + "…"
}

func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	currentWidth := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if currentWidth+w > width {
			return string(runes[:i])
		}
		currentWidth += w
	}
	return s
}
