package notes

import (
	"fmt"
	"io"
	"strings"
)

// DateLayout is the layout dates are rendered with.
const DateLayout = "January 2, 2006 15:04"

// WriteMarkdown renders n as a Markdown document with headings in the
// notes' language. Tasks are grouped by team.
func WriteMarkdown(w io.Writer, n *Notes) error {
	l := LabelsFor(n.Lang())
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n_%s_\n\n", n.Title, n.Date.Format(DateLayout))

	fmt.Fprintf(&b, "## %s\n\n", l.KeySummary)
	for _, s := range n.Summary {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", l.ActionItems)
	for _, g := range n.GroupTasks() {
		fmt.Fprintf(&b, "### %s\n\n", g.Team)
		for _, a := range g.Actions {
			fmt.Fprintf(&b, "- %s\n", a)
		}
		b.WriteString("\n")
	}

	if n.AudioPath != "" {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", l.Recording, n.AudioPath)
	}

	fmt.Fprintf(&b, "## %s\n\n%s\n", l.FullTranscript, strings.TrimSpace(n.Transcript))

	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown returns WriteMarkdown's output as a string.
func Markdown(n *Notes) string {
	var b strings.Builder
	_ = WriteMarkdown(&b, n)
	return b.String()
}
