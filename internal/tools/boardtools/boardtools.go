// Package boardtools registers the kanban card tools.
package boardtools

import (
	"context"
	"fmt"
	"strings"

	"riabuilder/internal/board"
	"riabuilder/internal/logging"
	"riabuilder/internal/tools"
)

// Store is the card persistence the board tools need.
type Store interface {
	CreateCard(board.Card) (board.Card, error)
	UpdateCard(string, board.CardUpdate) (board.Card, error)
}

// Register adds create_card and update_card to the registry.
func Register(r *tools.Registry, store Store) {
	r.MustRegister(createCardTool(store))
	r.MustRegister(updateCardTool(store))
}

func stageEnum() []any {
	return []any{
		string(board.StageCurrentBest),
		string(board.StageWorkshopping),
		string(board.StageReadyToGo),
		string(board.StageArchived),
	}
}

func createCardTool(store Store) *tools.Tool {
	return &tools.Tool{
		Name: "create_card",
		Description: "Create a new card on the project board. Categories: " +
			categoryHint() + ". Defaults: stage workshopping, type idea.",
		Category: tools.CategoryBoard,
		Schema: tools.ToolSchema{
			Required: []string{"text"},
			Properties: map[string]tools.Property{
				"text":     {Type: "string", Description: "Card text (the idea or question)"},
				"category": {Type: "string", Description: "Category name or code"},
				"page":     {Type: "string", Description: "Page within the category"},
				"stage":    {Type: "string", Description: "Board column", Enum: stageEnum()},
				"type":     {Type: "string", Description: "Card type", Enum: []any{string(board.TypeIdea), string(board.TypeQuestion)}},
				"goal":     {Type: "string", Description: "Optional goal or success criterion"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			text, err := tools.RequiredString(args, "text")
			if err != nil {
				return "", err
			}

			rawCategory := tools.StringArg(args, "category", "")
			code, matched := board.ResolveCategory(rawCategory)
			if rawCategory != "" && !matched {
				logging.Board("create_card: unknown category %q, using %s", rawCategory, code)
			}

			rawPage := tools.StringArg(args, "page", "")
			page, pageOK := board.ValidatePage(code, rawPage)
			if rawPage != "" && !pageOK {
				logging.Board("create_card: unknown page %q for %s, using %s", rawPage, code, page)
			}

			stage := board.Stage(tools.StringArg(args, "stage", string(board.DefaultStage)))
			if !board.ValidStage(stage) {
				logging.Board("create_card: unknown stage %q, using %s", stage, board.DefaultStage)
				stage = board.DefaultStage
			}
			ctype := board.CardType(tools.StringArg(args, "type", string(board.DefaultType)))
			if !board.ValidType(ctype) {
				ctype = board.DefaultType
			}

			card, err := store.CreateCard(board.Card{
				Text:        text,
				Category:    code,
				Subcategory: page,
				Stage:       stage,
				Type:        ctype,
				Goal:        tools.StringArg(args, "goal", ""),
			})
			if err != nil {
				return "", fmt.Errorf("failed to create card: %w", err)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Created card **%s** in %s / %s (stage: %s, type: %s).",
				card.Text, board.LabelForCode(card.Category), card.Subcategory, card.Stage, card.Type)
			if rawCategory != "" && !matched {
				fmt.Fprintf(&b, " Category %q was not recognized, so it was filed under %s.",
					rawCategory, board.LabelForCode(code))
			}
			return b.String(), nil
		},
	}
}

func updateCardTool(store Store) *tools.Tool {
	return &tools.Tool{
		Name:        "update_card",
		Description: "Update an existing board card by id. Only the provided fields change.",
		Category:    tools.CategoryBoard,
		Schema: tools.ToolSchema{
			Required: []string{"card_id"},
			Properties: map[string]tools.Property{
				"card_id":  {Type: "string", Description: "Exact id of the card to update"},
				"text":     {Type: "string", Description: "Replacement card text"},
				"category": {Type: "string", Description: "New category name or code"},
				"page":     {Type: "string", Description: "New page within the category"},
				"stage":    {Type: "string", Description: "New board column", Enum: stageEnum()},
				"type":     {Type: "string", Description: "New card type", Enum: []any{string(board.TypeIdea), string(board.TypeQuestion)}},
				"goal":     {Type: "string", Description: "New goal text"},
				"pinned":   {Type: "boolean", Description: "Pin or unpin the card"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			cardID, err := tools.RequiredString(args, "card_id")
			if err != nil {
				return "", err
			}

			var upd board.CardUpdate
			var changes []string
			if text := tools.StringArg(args, "text", ""); text != "" {
				upd.Text = &text
				changes = append(changes, "text")
			}
			if rawCategory := tools.StringArg(args, "category", ""); rawCategory != "" {
				code, matched := board.ResolveCategory(rawCategory)
				if !matched {
					logging.Board("update_card: unknown category %q, using %s", rawCategory, code)
				}
				upd.Category = &code
				changes = append(changes, "category")
				if rawPage := tools.StringArg(args, "page", ""); rawPage != "" {
					page, _ := board.ValidatePage(code, rawPage)
					upd.Subcategory = &page
					changes = append(changes, "page")
				}
			} else if rawPage := tools.StringArg(args, "page", ""); rawPage != "" {
				upd.Subcategory = &rawPage
				changes = append(changes, "page")
			}
			if raw := tools.StringArg(args, "stage", ""); raw != "" {
				stage := board.Stage(raw)
				if !board.ValidStage(stage) {
					return "", fmt.Errorf("unknown stage %q", raw)
				}
				upd.Stage = &stage
				changes = append(changes, "stage")
			}
			if raw := tools.StringArg(args, "type", ""); raw != "" {
				ctype := board.CardType(raw)
				if !board.ValidType(ctype) {
					return "", fmt.Errorf("unknown card type %q", raw)
				}
				upd.Type = &ctype
				changes = append(changes, "type")
			}
			if raw := tools.StringArg(args, "goal", ""); raw != "" {
				upd.Goal = &raw
				changes = append(changes, "goal")
			}
			if _, ok := args["pinned"]; ok {
				pinned := tools.BoolArg(args, "pinned", false)
				upd.Pinned = &pinned
				changes = append(changes, "pinned")
			}

			if len(changes) == 0 {
				return "", fmt.Errorf("no fields to update for card %s", cardID)
			}

			card, err := store.UpdateCard(cardID, upd)
			if err != nil {
				return "", fmt.Errorf("failed to update card %s: %w", cardID, err)
			}
			return fmt.Sprintf("Updated card **%s** (%s): changed %s. Now in %s / %s (stage: %s).",
				card.Text, card.ID, strings.Join(changes, ", "),
				board.LabelForCode(card.Category), card.Subcategory, card.Stage), nil
		},
	}
}

func categoryHint() string {
	var names []string
	for _, c := range board.Categories {
		names = append(names, c.Label)
	}
	return strings.Join(names, ", ")
}
