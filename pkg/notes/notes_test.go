package notes_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/notes"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/transcribe"
)

func newStore(t *testing.T) *notes.Store {
	t.Helper()
	s, err := notes.Open(notes.Options{InMemory: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var sampleResult = &transcribe.Result{
	Transcript: "Bonjour. On commence.",
	Summary:    []string{"Budget validé", "Lancement en mai"},
	Tasks: []transcribe.Task{
		{Team: "Marketing", Action: "Rédiger l'e-mail"},
		{Team: "Ingénierie", Action: "Geler l'API"},
		{Team: "Marketing", Action: "Préparer la page"},
	},
}

func at(day int) time.Time {
	return time.Date(2026, 5, day, 10, 30, 0, 0, time.UTC)
}

func TestNew(t *testing.T) {
	n := notes.New("  ", at(1), transcribe.French, sampleResult)
	if n.Title != notes.DefaultTitle {
		t.Errorf("Title = %q", n.Title)
	}
	if n.ID == uuid.Nil {
		t.Error("ID not assigned")
	}
	if n.Language != "fr" || n.Lang() != transcribe.French {
		t.Errorf("Language = %q", n.Language)
	}
	if len(n.Tasks) != 3 || n.Tasks[1].Team != "Ingénierie" {
		t.Errorf("Tasks = %+v", n.Tasks)
	}

	if got := notes.New("Sync", at(1), transcribe.Language{}, nil); got.Lang() != transcribe.English || got.Title != "Sync" {
		t.Errorf("zero language notes = %+v", got)
	}
}

func TestGroupTasks(t *testing.T) {
	groups := notes.New("x", at(1), transcribe.French, sampleResult).GroupTasks()
	if len(groups) != 2 {
		t.Fatalf("groups = %+v", groups)
	}
	if groups[0].Team != "Marketing" || len(groups[0].Actions) != 2 || groups[0].Actions[1] != "Préparer la page" {
		t.Errorf("groups[0] = %+v", groups[0])
	}
	if groups[1].Team != "Ingénierie" {
		t.Errorf("groups[1] = %+v", groups[1])
	}
}

func TestMarkdown(t *testing.T) {
	n := notes.New("Revue", at(3), transcribe.French, sampleResult)
	n.AudioPath = "recordings/2026/05/03/revue.mp3"
	md := notes.Markdown(n)

	for _, want := range []string{
		"# Revue\n",
		"_May 3, 2026 10:30_",
		"## Résumé Clé\n\n- Budget validé\n- Lancement en mai\n",
		"## Actions à Entreprendre\n\n### Marketing\n\n- Rédiger l'e-mail\n- Préparer la page\n",
		"### Ingénierie\n\n- Geler l'API\n",
		"## Enregistrement\n\nrecordings/2026/05/03/revue.mp3",
		"## Transcription Complète\n\nBonjour. On commence.\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Index(md, "Résumé") > strings.Index(md, "Actions à") {
		t.Error("summary must precede action items")
	}
}

func TestLabelsFallback(t *testing.T) {
	if got := notes.LabelsFor(transcribe.Language{}); got.KeySummary != "Key Summary" {
		t.Errorf("LabelsFor(zero) = %+v", got)
	}
	for _, l := range transcribe.Supported {
		if notes.LabelsFor(l).FullTranscript == "" {
			t.Errorf("no labels for %v", l)
		}
	}
}

func TestStorePutGet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	n := notes.New("Planning", at(2), transcribe.Spanish, sampleResult)
	n.AudioDuration = 95 * time.Second
	if err := s.Put(ctx, n); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != n.ID || got.Title != "Planning" || !got.Date.Equal(n.Date) || got.Language != "es" {
		t.Errorf("got = %+v", got)
	}
	if got.AudioDuration != 95*time.Second || len(got.Summary) != 2 || got.Tasks[2] != n.Tasks[2] {
		t.Errorf("got = %+v", got)
	}

	if _, err := s.Get(ctx, uuid.New()); !errors.Is(err, notes.ErrNotFound) {
		t.Errorf("Get(missing) err = %v", err)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	var ids []uuid.UUID
	for _, day := range []int{5, 1, 9, 3} {
		n := notes.New("", at(day), transcribe.English, nil)
		if err := s.Put(ctx, n); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, n.ID)
	}

	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 4 {
		t.Fatalf("len = %d", len(list))
	}
	wantDays := []int{9, 5, 3, 1}
	for i, n := range list {
		if n.Date.UTC().Day() != wantDays[i] {
			t.Errorf("list[%d] day = %d, want %d", i, n.Date.UTC().Day(), wantDays[i])
		}
	}

	top, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].ID != ids[2] {
		t.Errorf("List(2) = %v", top)
	}
}

func TestStoreListOrdersEarlyDates(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	dates := map[string]time.Time{
		"zero":    {},
		"apollo":  time.Date(1969, 7, 20, 20, 17, 0, 0, time.UTC),
		"eve":     time.Date(1969, 12, 31, 23, 59, 59, 900_000_000, time.UTC),
		"epoch":   time.Date(1970, 1, 1, 0, 0, 0, 500_000_000, time.UTC),
		"standup": at(1),
		"far":     time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for title, d := range dates {
		if err := s.Put(ctx, notes.New(title, d, transcribe.English, nil)); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"far", "standup", "epoch", "eve", "apollo", "zero"}
	if got := titles(list); !slices.Equal(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
}

func TestStoreReplaceMovesDate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := notes.New("a", at(1), transcribe.English, nil)
	b := notes.New("b", at(2), transcribe.English, nil)
	for _, n := range []*notes.Notes{a, b} {
		if err := s.Put(ctx, n); err != nil {
			t.Fatal(err)
		}
	}
	a.Date = at(3)
	a.Title = "a2"
	if err := s.Put(ctx, a); err != nil {
		t.Fatal(err)
	}

	list, _ := s.List(ctx, 0)
	if len(list) != 2 || list[0].Title != "a2" || list[1].Title != "b" {
		t.Fatalf("list = %v", titles(list))
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	n := notes.New("gone", at(1), transcribe.English, nil)
	if err := s.Put(ctx, n); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, n.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, n.ID); !errors.Is(err, notes.ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
	if list, _ := s.List(ctx, 0); len(list) != 0 {
		t.Errorf("list after delete = %v", titles(list))
	}
	if err := s.Delete(ctx, n.ID); !errors.Is(err, notes.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestStoreFind(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := notes.New("a", at(1), transcribe.English, nil)
	a.ID = uuid.MustParse("abcd0000-0000-4000-8000-000000000001")
	b := notes.New("b", at(2), transcribe.English, nil)
	b.ID = uuid.MustParse("abce0000-0000-4000-8000-000000000002")
	for _, n := range []*notes.Notes{a, b} {
		if err := s.Put(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	if got, err := s.Find(ctx, "ABCD"); err != nil || got.ID != a.ID {
		t.Errorf("Find(ABCD) = %v, %v", got, err)
	}
	if got, err := s.Find(ctx, b.ID.String()); err != nil || got.ID != b.ID {
		t.Errorf("Find(full) = %v, %v", got, err)
	}
	if _, err := s.Find(ctx, "abc"); !errors.Is(err, notes.ErrAmbiguous) {
		t.Errorf("Find(abc) err = %v", err)
	}
	if _, err := s.Find(ctx, "ffff"); !errors.Is(err, notes.ErrNotFound) {
		t.Errorf("Find(ffff) err = %v", err)
	}
	if _, err := s.Find(ctx, ""); !errors.Is(err, notes.ErrNotFound) {
		t.Errorf("Find(\"\") err = %v", err)
	}
}

func TestStoreConcurrentPut(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Put(ctx, notes.New("", at(i%28+1), transcribe.English, nil)); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if list, _ := s.List(ctx, 0); len(list) != 16 {
		t.Errorf("len = %d", len(list))
	}
}

func TestStoreOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "db")

	s, err := notes.Open(notes.Options{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	n := notes.New("persisted", at(4), transcribe.German, sampleResult)
	if err := s.Put(ctx, n); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = notes.Open(notes.Options{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Get(ctx, n.ID)
	if err != nil || got.Title != "persisted" {
		t.Fatalf("Get = %v, %v", got, err)
	}

	if _, err := notes.Open(notes.Options{}); err == nil {
		t.Error("Open without Dir should fail")
	}
}

func titles(list []*notes.Notes) []string {
	var out []string
	for _, n := range list {
		out = append(out, n.Title)
	}
	return out
}
