package boardtools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"riabuilder/internal/board"
	"riabuilder/internal/tools"
)

type fakeStore struct {
	created []board.Card
	updates map[string]board.CardUpdate
	cards   map[string]board.Card
}

func newFakeStore() *fakeStore {
	return &fakeStore{updates: map[string]board.CardUpdate{}, cards: map[string]board.Card{}}
}

func (f *fakeStore) CreateCard(c board.Card) (board.Card, error) {
	c.ID = fmt.Sprintf("card-%d", len(f.created)+1)
	f.created = append(f.created, c)
	f.cards[c.ID] = c
	return c, nil
}

func (f *fakeStore) UpdateCard(id string, upd board.CardUpdate) (board.Card, error) {
	c, ok := f.cards[id]
	if !ok {
		return board.Card{}, fmt.Errorf("card %s: not found", id)
	}
	f.updates[id] = upd
	if upd.Text != nil {
		c.Text = *upd.Text
	}
	if upd.Stage != nil {
		c.Stage = *upd.Stage
	}
	f.cards[id] = c
	return c, nil
}

func newRegistry(t *testing.T) (*tools.Registry, *fakeStore) {
	t.Helper()
	r := tools.NewRegistry()
	store := newFakeStore()
	Register(r, store)
	return r, store
}

func TestCreateCardDefaults(t *testing.T) {
	r, store := newRegistry(t)

	res := r.Execute(context.Background(), "create_card", map[string]any{"text": "Pick a custodian"})
	if !res.IsSuccess() {
		t.Fatalf("create_card failed: %v", res.Error)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d cards", len(store.created))
	}
	card := store.created[0]
	if card.Stage != board.DefaultStage {
		t.Errorf("stage = %s, want default", card.Stage)
	}
	if card.Type != board.DefaultType {
		t.Errorf("type = %s, want default", card.Type)
	}
	if card.Category != board.DefaultCategoryCode {
		t.Errorf("category = %s, want default", card.Category)
	}
	// Page falls back to the category's first page.
	if card.Subcategory == "" {
		t.Error("subcategory empty, want first page fallback")
	}
}

func TestCreateCardUnknownCategoryFallsBack(t *testing.T) {
	r, store := newRegistry(t)

	res := r.Execute(context.Background(), "create_card", map[string]any{
		"text":     "Research postcards",
		"category": "Bogus Department",
		"stage":    "ready_to_go",
	})
	if !res.IsSuccess() {
		t.Fatalf("create_card failed: %v", res.Error)
	}
	card := store.created[0]
	if card.Category != board.DefaultCategoryCode {
		t.Errorf("category = %s, want fallback default", card.Category)
	}
	if card.Stage != board.StageReadyToGo {
		t.Errorf("stage = %s, want ready_to_go", card.Stage)
	}
	if !strings.Contains(res.Result, "was not recognized") {
		t.Errorf("result should note the fallback: %q", res.Result)
	}
}

func TestCreateCardResolvesAlias(t *testing.T) {
	r, store := newRegistry(t)

	res := r.Execute(context.Background(), "create_card", map[string]any{
		"text":     "Draft landing page copy",
		"category": "growth engine",
		"page":     "landing page",
	})
	if !res.IsSuccess() {
		t.Fatalf("create_card failed: %v", res.Error)
	}
	card := store.created[0]
	if card.Category != "Marketing" {
		t.Errorf("category = %s, want Marketing", card.Category)
	}
	if card.Subcategory != "Landing Page" {
		t.Errorf("subcategory = %s, want canonical page", card.Subcategory)
	}
}

func TestCreateCardRequiresText(t *testing.T) {
	r, store := newRegistry(t)

	res := r.Execute(context.Background(), "create_card", map[string]any{})
	if res.IsSuccess() {
		t.Fatal("expected error for missing text")
	}
	if !errors.Is(res.Error, tools.ErrMissingRequiredArg) {
		t.Errorf("want ErrMissingRequiredArg, got %v", res.Error)
	}
	if len(store.created) != 0 {
		t.Error("card created despite missing text")
	}
}

func TestUpdateCardUnknownID(t *testing.T) {
	r, store := newRegistry(t)

	res := r.Execute(context.Background(), "update_card", map[string]any{
		"card_id": "no-such-card",
		"text":    "mutated",
	})
	if res.IsSuccess() {
		t.Fatal("expected error for unknown id")
	}
	if len(store.updates) != 0 {
		t.Error("store mutated for unknown id")
	}
}

func TestUpdateCardAppliesFields(t *testing.T) {
	r, store := newRegistry(t)
	card, _ := store.CreateCard(board.Card{Text: "old", Category: "Ops", Stage: board.StageWorkshopping, Type: board.TypeIdea})

	res := r.Execute(context.Background(), "update_card", map[string]any{
		"card_id": card.ID,
		"text":    "new text",
		"stage":   "current_best",
	})
	if !res.IsSuccess() {
		t.Fatalf("update_card failed: %v", res.Error)
	}
	upd := store.updates[card.ID]
	if upd.Text == nil || *upd.Text != "new text" {
		t.Errorf("text update missing: %+v", upd)
	}
	if upd.Stage == nil || *upd.Stage != board.StageCurrentBest {
		t.Errorf("stage update missing: %+v", upd)
	}
	if upd.Type != nil || upd.Goal != nil || upd.Pinned != nil {
		t.Errorf("unexpected field updates: %+v", upd)
	}
}

func TestUpdateCardRejectsBadStage(t *testing.T) {
	r, store := newRegistry(t)
	card, _ := store.CreateCard(board.Card{Text: "x", Category: "Ops", Stage: board.StageWorkshopping, Type: board.TypeIdea})

	res := r.Execute(context.Background(), "update_card", map[string]any{
		"card_id": card.ID,
		"stage":   "parking_lot",
	})
	if res.IsSuccess() {
		t.Fatal("expected error for unknown stage")
	}
	if len(store.updates) != 0 {
		t.Error("store mutated despite invalid stage")
	}
}
