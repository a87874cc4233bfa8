package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"riabuilder/internal/board"
	"riabuilder/internal/docs"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create local store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCardLifecycle(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateCard(board.Card{
		Text:        "Draft the fee schedule",
		Category:    "Marketing",
		Subcategory: "Fee Calculator",
		Stage:       board.StageWorkshopping,
		Type:        board.TypeIdea,
	})
	if err != nil {
		t.Fatalf("CreateCard failed: %v", err)
	}
	if created.ID == "" || created.Timestamp == 0 {
		t.Fatalf("CreateCard did not assign id/timestamp: %+v", created)
	}

	got, err := s.GetCard(created.ID)
	if err != nil {
		t.Fatalf("GetCard failed: %v", err)
	}
	if diff := cmp.Diff(created, got); diff != "" {
		t.Errorf("Card round-trip mismatch (-want +got):\n%s", diff)
	}

	newText := "Draft and publish the fee schedule"
	stage := board.StageReadyToGo
	updated, err := s.UpdateCard(created.ID, board.CardUpdate{Text: &newText, Stage: &stage})
	if err != nil {
		t.Fatalf("UpdateCard failed: %v", err)
	}
	if updated.Text != newText || updated.Stage != board.StageReadyToGo {
		t.Errorf("UpdateCard result = %+v", updated)
	}
	// Untouched fields survive.
	if updated.Category != "Marketing" || updated.Subcategory != "Fee Calculator" {
		t.Errorf("UpdateCard clobbered untouched fields: %+v", updated)
	}

	if err := s.DeleteCard(created.ID); err != nil {
		t.Fatalf("DeleteCard failed: %v", err)
	}
	if _, err := s.GetCard(created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCard after delete: want ErrNotFound, got %v", err)
	}
}

func TestUpdateCardUnknownIDMutatesNothing(t *testing.T) {
	s := newTestStore(t)

	card, err := s.CreateCard(board.Card{Text: "keep me", Category: "Ops", Stage: board.StageWorkshopping, Type: board.TypeIdea})
	if err != nil {
		t.Fatalf("CreateCard failed: %v", err)
	}

	text := "mutated"
	if _, err := s.UpdateCard("no-such-id", board.CardUpdate{Text: &text}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateCard unknown id: want ErrNotFound, got %v", err)
	}

	got, err := s.GetCard(card.ID)
	if err != nil {
		t.Fatalf("GetCard failed: %v", err)
	}
	if got.Text != "keep me" {
		t.Errorf("unrelated card was mutated: %+v", got)
	}
}

func TestCardNotesAndOrder(t *testing.T) {
	s := newTestStore(t)

	a, _ := s.CreateCard(board.Card{Text: "a", Category: "Ops", Stage: board.StageWorkshopping, Type: board.TypeIdea})
	b, _ := s.CreateCard(board.Card{Text: "b", Category: "Ops", Stage: board.StageWorkshopping, Type: board.TypeIdea})
	c, _ := s.CreateCard(board.Card{Text: "c", Category: "Ops", Stage: board.StageWorkshopping, Type: board.TypeIdea})

	if _, err := s.AddNote(a.ID, "first note"); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if _, err := s.AddNote("missing", "orphan"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddNote on missing card: want ErrNotFound, got %v", err)
	}

	if err := s.ReorderCards([]string{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("ReorderCards failed: %v", err)
	}
	cards, err := s.ListCards()
	if err != nil {
		t.Fatalf("ListCards failed: %v", err)
	}
	gotOrder := []string{}
	for _, card := range cards {
		gotOrder = append(gotOrder, card.Text)
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, gotOrder); diff != "" {
		t.Errorf("board order mismatch (-want +got):\n%s", diff)
	}
	// The reordered list still carries notes.
	for _, card := range cards {
		if card.ID == a.ID && len(card.Notes) != 1 {
			t.Errorf("card a lost its note: %+v", card.Notes)
		}
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	s := newTestStore(t)

	payload := []byte("1% AUM, no minimums")
	meta, err := s.SaveDocument(docs.DocumentMeta{
		Filename: "fees.txt",
		MimeType: "text/plain",
		Tags:     []string{"pricing"},
	}, payload)
	if err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	if meta.FileType != "txt" {
		t.Errorf("FileType = %q, want txt", meta.FileType)
	}
	if meta.Size != int64(len(payload)) {
		t.Errorf("Size = %d, want %d", meta.Size, len(payload))
	}

	got, err := s.GetDocument(meta.ID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if diff := cmp.Diff(meta, got, cmpopts.IgnoreFields(docs.DocumentMeta{}, "StorageURL")); diff != "" {
		t.Errorf("Document meta mismatch (-want +got):\n%s", diff)
	}

	body, err := s.GetDocumentPayload(meta.ID)
	if err != nil {
		t.Fatalf("GetDocumentPayload failed: %v", err)
	}
	if string(body) != string(payload) {
		t.Errorf("payload = %q, want %q", body, payload)
	}

	got.IsCanonical = true
	got.DriveFileID = "drive-42"
	got.Summary = "fee schedule"
	if err := s.UpdateDocumentMeta(got); err != nil {
		t.Fatalf("UpdateDocumentMeta failed: %v", err)
	}
	reloaded, _ := s.GetDocument(meta.ID)
	if !reloaded.IsCanonical || reloaded.DriveFileID != "drive-42" || reloaded.Summary != "fee schedule" {
		t.Errorf("UpdateDocumentMeta did not stick: %+v", reloaded)
	}

	if err := s.DeleteDocument(meta.ID); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if _, err := s.GetDocument(meta.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDocument after delete: want ErrNotFound, got %v", err)
	}
}

func TestCanonDocs(t *testing.T) {
	s := newTestStore(t)

	doc, err := s.CreateCanonDoc("Master Index", "1. Compliance first.")
	if err != nil {
		t.Fatalf("CreateCanonDoc failed: %v", err)
	}

	updated, err := s.UpdateCanonDoc(doc.ID, "Master Index", "1. Compliance first.\n2. Low overhead.")
	if err != nil {
		t.Fatalf("UpdateCanonDoc failed: %v", err)
	}
	if updated.Content == doc.Content {
		t.Error("UpdateCanonDoc did not change content")
	}

	all, err := s.ListCanonDocs()
	if err != nil {
		t.Fatalf("ListCanonDocs failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("ListCanonDocs len = %d, want 1", len(all))
	}

	if err := s.DeleteCanonDoc(doc.ID); err != nil {
		t.Fatalf("DeleteCanonDoc failed: %v", err)
	}
	if _, err := s.GetCanonDoc(doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCanonDoc after delete: want ErrNotFound, got %v", err)
	}
}

func TestSummariesAppendOnly(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.AppendSummary("Discussed custodian choice.", []string{"Use Altruist"}); err != nil {
		t.Fatalf("AppendSummary failed: %v", err)
	}
	if _, err := s.AppendSummary("Worked on fee messaging.", nil); err != nil {
		t.Fatalf("AppendSummary failed: %v", err)
	}

	all, err := s.ListSummaries()
	if err != nil {
		t.Fatalf("ListSummaries failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListSummaries len = %d, want 2", len(all))
	}
	if all[0].Summary != "Discussed custodian choice." {
		t.Errorf("summaries not oldest-first: %+v", all)
	}
	if len(all[1].KeyDecisions) != 0 {
		t.Errorf("nil key decisions should round-trip empty: %+v", all[1].KeyDecisions)
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)

	empty, err := s.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if empty.UserProfile != "" || empty.ProjectConstraints != "" {
		t.Errorf("fresh settings not empty: %+v", empty)
	}

	want := AssistantSettings{UserProfile: "CFA & CFP", ProjectConstraints: "Budget: bootstrapped"}
	if err := s.PutSettings(want); err != nil {
		t.Fatalf("PutSettings failed: %v", err)
	}
	got, err := s.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestTodos(t *testing.T) {
	s := newTestStore(t)

	item, err := s.CreateTodo(TodoItem{Text: "Order business cards"})
	if err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}
	if item.Priority != "medium" {
		t.Errorf("default priority = %q, want medium", item.Priority)
	}

	item.Completed = true
	item.Tags = []string{"launch"}
	updated, err := s.UpdateTodo(item)
	if err != nil {
		t.Fatalf("UpdateTodo failed: %v", err)
	}
	if !updated.Completed || len(updated.Tags) != 1 {
		t.Errorf("UpdateTodo did not stick: %+v", updated)
	}

	if err := s.DeleteTodo(item.ID); err != nil {
		t.Fatalf("DeleteTodo failed: %v", err)
	}
	todos, _ := s.ListTodos()
	if len(todos) != 0 {
		t.Errorf("todos remain after delete: %+v", todos)
	}
}

func TestChecklistSeedsAndToggles(t *testing.T) {
	s := newTestStore(t)

	items, err := s.GetChecklist()
	if err != nil {
		t.Fatalf("GetChecklist failed: %v", err)
	}
	if len(items) != len(DefaultChecklist) {
		t.Fatalf("checklist len = %d, want %d", len(items), len(DefaultChecklist))
	}

	toggled, err := s.ToggleChecklistItem(items[0].ID)
	if err != nil {
		t.Fatalf("ToggleChecklistItem failed: %v", err)
	}
	if !toggled.Done {
		t.Error("first toggle should mark item done")
	}
	toggled, _ = s.ToggleChecklistItem(items[0].ID)
	if toggled.Done {
		t.Error("second toggle should mark item not done")
	}

	// A second read must not re-seed.
	again, _ := s.GetChecklist()
	if len(again) != len(DefaultChecklist) {
		t.Errorf("checklist re-seeded: len = %d", len(again))
	}
}

func TestCalculatorDefaultsAndRoundTrip(t *testing.T) {
	s := newTestStore(t)

	d, err := s.GetCalculator()
	if err != nil {
		t.Fatalf("GetCalculator failed: %v", err)
	}
	if diff := cmp.Diff(DefaultCalculator, d); diff != "" {
		t.Errorf("calculator defaults mismatch (-want +got):\n%s", diff)
	}

	d.NumClients = 80
	d.Notes = "stretch goal"
	if err := s.PutCalculator(d); err != nil {
		t.Fatalf("PutCalculator failed: %v", err)
	}
	got, _ := s.GetCalculator()
	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("calculator round-trip mismatch (-want +got):\n%s", diff)
	}

	if got.MeetingHoursPerYear() != float64(80*2*60)/60.0 {
		t.Errorf("MeetingHoursPerYear = %v", got.MeetingHoursPerYear())
	}
}
