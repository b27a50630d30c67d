// Package notes stores and renders meeting notes.
//
// A Notes record combines a transcription result with the title, date and
// output language chosen by the user and the location of the saved
// recording. Records live in a BadgerDB store with msgpack-encoded values.
package notes

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/transcribe"
)

// DefaultTitle is used when notes are created without a title.
const DefaultTitle = "Meeting Notes"

// Task is one action item.
type Task struct {
	Team   string `msgpack:"team" json:"team" yaml:"team"`
	Action string `msgpack:"action" json:"action" yaml:"action"`
}

// Notes is one processed meeting.
type Notes struct {
	ID    uuid.UUID `msgpack:"id" json:"id" yaml:"id"`
	Title string    `msgpack:"title" json:"title" yaml:"title"`
	Date  time.Time `msgpack:"date" json:"date" yaml:"date"`

	// Language is the BCP 47 tag of the summary and tasks.
	Language string `msgpack:"language" json:"language" yaml:"language"`

	Summary    []string `msgpack:"summary" json:"summary" yaml:"summary"`
	Tasks      []Task   `msgpack:"tasks" json:"tasks" yaml:"tasks"`
	Transcript string   `msgpack:"transcript" json:"transcript" yaml:"transcript"`

	// AudioPath is the store path of the transcoded recording, if saved.
	AudioPath     string        `msgpack:"audio_path,omitempty" json:"audio_path,omitempty" yaml:"audio_path,omitempty"`
	AudioDuration time.Duration `msgpack:"audio_duration,omitempty" json:"audio_duration,omitempty" yaml:"audio_duration,omitempty"`
}

// New builds notes from a transcription result with a fresh ID. A blank
// title becomes DefaultTitle.
func New(title string, date time.Time, lang transcribe.Language, res *transcribe.Result) *Notes {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	if lang.IsZero() {
		lang = transcribe.English
	}
	n := &Notes{
		ID:       uuid.New(),
		Title:    title,
		Date:     date,
		Language: lang.Tag.String(),
	}
	if res != nil {
		n.Transcript = res.Transcript
		n.Summary = res.Summary
		for _, t := range res.Tasks {
			n.Tasks = append(n.Tasks, Task{Team: t.Team, Action: t.Action})
		}
	}
	return n
}

// Lang returns the output language, English if it is unset or unknown.
func (n *Notes) Lang() transcribe.Language {
	l, err := transcribe.ParseLanguage(n.Language)
	if err != nil {
		return transcribe.English
	}
	return l
}

// ShortID returns the first eight hex digits of the ID.
func (n *Notes) ShortID() string {
	return n.ID.String()[:8]
}

// TeamTasks is the list of actions for one team.
type TeamTasks struct {
	Team    string
	Actions []string
}

// GroupTasks groups tasks by team, keeping teams in order of first
// appearance.
func (n *Notes) GroupTasks() []TeamTasks {
	var out []TeamTasks
	index := map[string]int{}
	for _, t := range n.Tasks {
		i, ok := index[t.Team]
		if !ok {
			i = len(out)
			index[t.Team] = i
			out = append(out, TeamTasks{Team: t.Team})
		}
		out[i].Actions = append(out[i].Actions, t.Action)
	}
	return out
}
