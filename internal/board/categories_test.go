package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		matched bool
	}{
		{"label", "Client Experience", "Experience", true},
		{"label case-insensitive", "client experience", "Experience", true},
		{"code", "Ops", "Ops", true},
		{"alias", "growth", "Marketing", true},
		{"alias with punctuation", "ops & tech", "Ops", true},
		{"whitespace trimmed", "  Advisory Logic  ", "Logic", true},
		{"unrecognized falls back", "Space Travel", "Experience", false},
		{"empty falls back", "", "Experience", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, matched := ResolveCategory(tt.input)
			assert.Equal(t, tt.want, code)
			assert.Equal(t, tt.matched, matched)
		})
	}
}

func TestAliasesPointAtRealCategories(t *testing.T) {
	for alias, code := range categoryAliases {
		_, ok := CategoryByCode(code)
		require.True(t, ok, "alias %q maps to unknown code %q", alias, code)
	}
}

func TestValidatePage(t *testing.T) {
	page, ok := ValidatePage("Experience", "Onboarding")
	assert.True(t, ok)
	assert.Equal(t, "Onboarding", page)

	// Case-insensitive match returns the canonical spelling.
	page, ok = ValidatePage("Experience", "onboarding")
	assert.True(t, ok)
	assert.Equal(t, "Onboarding", page)

	// Invalid page falls back to the first known page.
	page, ok = ValidatePage("Marketing", "Skywriting")
	assert.False(t, ok)
	assert.Equal(t, "Landing Page", page)

	// Unknown category cannot validate anything.
	_, ok = ValidatePage("Nope", "Onboarding")
	assert.False(t, ok)
}

func TestStageAndTypeValidation(t *testing.T) {
	assert.True(t, ValidStage(StageWorkshopping))
	assert.True(t, ValidStage(StageArchived))
	assert.False(t, ValidStage(Stage("parked")))

	assert.True(t, ValidType(TypeQuestion))
	assert.False(t, ValidType(CardType("rant")))

	assert.Equal(t, StageWorkshopping, DefaultStage)
	assert.Equal(t, TypeIdea, DefaultType)
}
