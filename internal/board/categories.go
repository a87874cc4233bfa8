package board

import "strings"

// Category is one top-level tab of the board: an internal code, the label
// shown to users, and the fixed set of default pages.
type Category struct {
	Code  string
	Label string
	Pages []string
}

// Categories is the fixed board structure, in presentation order.
var Categories = []Category{
	{
		Code:  "Experience",
		Label: "Client Experience",
		Pages: []string{"Onboarding", "First Meeting", "Year 1", "Portal Design"},
	},
	{
		Code:  "Ops",
		Label: "Ops & Tech",
		Pages: []string{"Tech Stack", "Compliance", "Workflow Automation"},
	},
	{
		Code:  "Marketing",
		Label: "Growth Engine",
		Pages: []string{"Landing Page", "Postcards", "Fee Calculator", "Messaging"},
	},
	{
		Code:  "Logic",
		Label: "Advisory Logic",
		Pages: []string{"Asset Allocation", "Models", "Research", "Regulatory"},
	},
}

// DefaultCategoryCode is where cards land when the requested category
// cannot be recognized.
const DefaultCategoryCode = "Experience"

// categoryAliases maps lowercased human input to internal codes. The model
// (and users) refer to categories loosely; the board always stores codes.
var categoryAliases = map[string]string{
	"experience":        "Experience",
	"client experience": "Experience",
	"client":            "Experience",
	"clients":           "Experience",
	"cx":                "Experience",
	"onboarding":        "Experience",

	"ops":          "Ops",
	"ops & tech":   "Ops",
	"ops and tech": "Ops",
	"operations":   "Ops",
	"tech":         "Ops",
	"technology":   "Ops",
	"compliance":   "Ops",

	"marketing":     "Marketing",
	"growth":        "Marketing",
	"growth engine": "Marketing",
	"sales":         "Marketing",
	"branding":      "Marketing",

	"logic":            "Logic",
	"advisory":         "Logic",
	"advisory logic":   "Logic",
	"investments":      "Logic",
	"investment logic": "Logic",
	"portfolio":        "Logic",
}

// CategoryByCode returns the category with the given internal code.
func CategoryByCode(code string) (Category, bool) {
	for _, c := range Categories {
		if c.Code == code {
			return c, true
		}
	}
	return Category{}, false
}

// ResolveCategory maps a human-readable category name (label, code, or
// alias, case-insensitive) to an internal code. Unrecognized names fall
// back to DefaultCategoryCode; the second return reports an exact match.
func ResolveCategory(name string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return DefaultCategoryCode, false
	}
	for _, c := range Categories {
		if strings.ToLower(c.Code) == needle || strings.ToLower(c.Label) == needle {
			return c.Code, true
		}
	}
	if code, ok := categoryAliases[needle]; ok {
		return code, true
	}
	return DefaultCategoryCode, false
}

// ValidatePage checks the requested page against the category's known
// pages (case-insensitive) and returns the canonical page name. Invalid or
// empty pages fall back to the category's first page.
func ValidatePage(categoryCode, page string) (string, bool) {
	cat, ok := CategoryByCode(categoryCode)
	if !ok || len(cat.Pages) == 0 {
		return "", false
	}
	needle := strings.ToLower(strings.TrimSpace(page))
	for _, p := range cat.Pages {
		if strings.ToLower(p) == needle {
			return p, true
		}
	}
	return cat.Pages[0], false
}

// LabelForCode returns the display label for a category code, falling back
// to the code itself for unknown values.
func LabelForCode(code string) string {
	if c, ok := CategoryByCode(code); ok {
		return c.Label
	}
	return code
}
