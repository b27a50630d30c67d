package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/notes"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/transcribe"
)

func TestNotesView(t *testing.T) {
	n := notes.New("Sprint Review", time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC), transcribe.German, &transcribe.Result{
		Transcript: "Guten Morgen.",
		Summary:    []string{"Release verschoben"},
		Tasks:      []transcribe.Task{{Team: "QA", Action: "Regressionstest"}},
	})

	v := NotesView{Styles: NewStyles(DefaultTheme), Notes: n, Width: 60}
	out := v.Render()
	for _, want := range []string{"Sprint Review", "Wichtige Zusammenfassung", "Release verschoben", "QA", "Regressionstest", n.ShortID()} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Guten Morgen") {
		t.Error("transcript rendered without Transcript flag")
	}
	for i, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line %d is %d cells wide", i, w)
		}
	}

	v.Transcript = true
	if out := v.Render(); !strings.Contains(out, "Vollständiges Transkript") || !strings.Contains(out, "Guten Morgen") {
		t.Errorf("transcript missing:\n%s", out)
	}

	if (NotesView{}).Render() != "" {
		t.Error("nil notes should render empty")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title", 8, "a longe…"},
		{"会議の記録です", 7, "会議の…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.s, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
		}
	}
}
