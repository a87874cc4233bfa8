package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"riabuilder/internal/board"
	"riabuilder/internal/docs"
	"riabuilder/internal/store"
)

// ContextStore is the read surface the orchestrator assembles system
// context from. *store.LocalStore satisfies it.
type ContextStore interface {
	ListCanonDocs() ([]store.CanonDoc, error)
	GetCalculator() (store.CalculatorData, error)
	ListDocuments() ([]docs.DocumentMeta, error)
	GetChecklist() ([]store.ChecklistItem, error)
	ListSummaries() ([]store.ConversationSummary, error)
	GetSettings() (store.AssistantSettings, error)
	ListCards() ([]board.Card, error)
	AppendSummary(summary string, keyDecisions []string) (store.ConversationSummary, error)
}

// contextSnapshot is one turn's view of external state. It is rebuilt
// fresh on every turn so board and canon edits show up immediately.
type contextSnapshot struct {
	canon      []store.CanonDoc
	calculator store.CalculatorData
	documents  []docs.DocumentMeta
	checklist  []store.ChecklistItem
	summaries  []store.ConversationSummary
	settings   store.AssistantSettings
	cards      []board.Card
}

// loadSnapshot fans the store reads out and collects them.
func loadSnapshot(ctx context.Context, s ContextStore) (*contextSnapshot, error) {
	snap := &contextSnapshot{}
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.canon, err = s.ListCanonDocs()
		return err
	})
	g.Go(func() error {
		var err error
		snap.calculator, err = s.GetCalculator()
		return err
	})
	g.Go(func() error {
		var err error
		snap.documents, err = s.ListDocuments()
		return err
	})
	g.Go(func() error {
		var err error
		snap.checklist, err = s.GetChecklist()
		return err
	})
	g.Go(func() error {
		var err error
		snap.summaries, err = s.ListSummaries()
		return err
	})
	g.Go(func() error {
		var err error
		snap.settings, err = s.GetSettings()
		return err
	})
	g.Go(func() error {
		var err error
		snap.cards, err = s.ListCards()
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to assemble context: %w", err)
	}
	return snap, nil
}

// systemInstruction renders the snapshot into the model's system prompt.
func (snap *contextSnapshot) systemInstruction(now time.Time) string {
	var b strings.Builder

	b.WriteString("Role: You are the Guardian of the RIA Project, an expert consultant ")
	b.WriteString("helping build a registered investment advisory firm.\n\n")
	b.WriteString("CRITICAL INSTRUCTIONS:\n")
	b.WriteString("1. The Canonical Documents below are the single source of truth. ")
	b.WriteString("If the board state or the user's query contradicts the canon, gently correct them.\n")
	b.WriteString("2. Adhere strictly to the project constraints. Never suggest restricted vendors or tools.\n")
	b.WriteString("3. Use the available tools to act on the board, documents, Slack, research, and Drive ")
	b.WriteString("instead of describing what the user should do by hand.\n\n")

	b.WriteString("--- THE CANON (IMMUTABLE TRUTH) ---\n")
	if len(snap.canon) == 0 {
		b.WriteString("(no canonical documents yet)\n")
	}
	for _, doc := range snap.canon {
		fmt.Fprintf(&b, "DOCUMENT: %s\nCONTENT:\n%s\n---\n", strings.ToUpper(doc.Title), doc.Content)
	}
	b.WriteString("-----------------------------------\n\n")

	b.WriteString("CONTEXT:\n")
	fmt.Fprintf(&b, "- Date: %s\n", now.Format("Monday, January 2, 2006"))
	if snap.settings.UserProfile != "" {
		fmt.Fprintf(&b, "- User: %s\n", snap.settings.UserProfile)
	}
	if snap.settings.ProjectConstraints != "" {
		fmt.Fprintf(&b, "- Constraints & Restrictions:\n%s\n", snap.settings.ProjectConstraints)
	}

	fmt.Fprintf(&b, "\nCAPACITY CALCULATOR: %d clients, %.0f meeting hours/year against %.0f working hours/year.\n",
		snap.calculator.NumClients, snap.calculator.MeetingHoursPerYear(), snap.calculator.WorkHoursPerYear())

	if len(snap.documents) > 0 {
		b.WriteString("\nAVAILABLE DOCUMENTS (read with read_document):\n")
		for _, d := range snap.documents {
			line := fmt.Sprintf("- %s", d.Filename)
			if d.Summary != "" {
				line += " - " + d.Summary
			}
			if d.IsCanonical {
				line += " [canonical]"
			}
			b.WriteString(line + "\n")
		}
	}

	if len(snap.checklist) > 0 {
		done := 0
		for _, item := range snap.checklist {
			if item.Done {
				done++
			}
		}
		fmt.Fprintf(&b, "\nLAUNCH CHECKLIST: %d of %d complete.\n", done, len(snap.checklist))
		for _, item := range snap.checklist {
			mark := " "
			if item.Done {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, item.Text)
		}
	}

	if len(snap.summaries) > 0 {
		b.WriteString("\nPAST CONVERSATIONS:\n")
		for _, cs := range snap.summaries {
			fmt.Fprintf(&b, "- %s\n", cs.Summary)
			for _, decision := range cs.KeyDecisions {
				fmt.Fprintf(&b, "  - Decision: %s\n", decision)
			}
		}
	}

	b.WriteString("\nCURRENT BOARD STATE (working drafts):\n")
	if len(snap.cards) == 0 {
		b.WriteString("(the board is empty)\n")
	}
	for _, card := range snap.cards {
		fmt.Fprintf(&b, "- [%s / %s] (%s, %s, id: %s): %s\n",
			board.LabelForCode(card.Category), card.Subcategory, card.Stage, card.Type, card.ID, card.Text)
	}

	return b.String()
}
