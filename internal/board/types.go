// Package board defines the kanban board domain: cards, stages, and the
// fixed category/page structure of the RIA build-out project.
package board

// Stage is the board-column state of a card.
type Stage string

const (
	StageCurrentBest  Stage = "current_best"
	StageWorkshopping Stage = "workshopping"
	StageReadyToGo    Stage = "ready_to_go"
	StageArchived     Stage = "archived"
)

// DefaultStage is applied when a card is created without a stage.
const DefaultStage = StageWorkshopping

// CardType distinguishes actionable ideas from open questions.
type CardType string

const (
	TypeIdea     CardType = "idea"
	TypeQuestion CardType = "question"
)

// DefaultType is applied when a card is created without a type.
const DefaultType = TypeIdea

// Note is a timestamped annotation on a card.
type Note struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Card is a unit of work/idea on the board.
type Card struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Category      string   `json:"category"`    // internal category code
	Subcategory   string   `json:"subcategory"` // page name within the category
	Stage         Stage    `json:"stage"`
	Type          CardType `json:"type"`
	Goal          string   `json:"goal,omitempty"`
	Pinned        bool     `json:"pinned"`
	Timestamp     int64    `json:"timestamp"`
	Notes         []Note   `json:"notes"`
	ReferenceURLs []string `json:"referenceUrls,omitempty"`
}

// CardUpdate carries the mutable fields of update operations. Nil pointers
// mean "leave unchanged".
type CardUpdate struct {
	Text        *string   `json:"text,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Subcategory *string   `json:"subcategory,omitempty"`
	Stage       *Stage    `json:"stage,omitempty"`
	Type        *CardType `json:"type,omitempty"`
	Goal        *string   `json:"goal,omitempty"`
	Pinned      *bool     `json:"pinned,omitempty"`
}

// ValidStage reports whether s names a known stage.
func ValidStage(s Stage) bool {
	switch s {
	case StageCurrentBest, StageWorkshopping, StageReadyToGo, StageArchived:
		return true
	}
	return false
}

// ValidType reports whether t names a known card type.
func ValidType(t CardType) bool {
	return t == TypeIdea || t == TypeQuestion
}
