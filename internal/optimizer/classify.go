package optimizer

import (
	"strings"

	"github.com/lifeboard/shopping-service/internal/matching"
)

// Item categories, in classification priority order. The first category
// whose keyword list matches wins; anything unmatched is CategoryOther.
const (
	CategoryMeat      = "meat"
	CategoryDairy     = "dairy"
	CategoryProduce   = "produce"
	CategoryPantry    = "pantry"
	CategoryFrozen    = "frozen"
	CategoryBakery    = "bakery"
	CategoryBeverages = "beverages"
	CategoryOther     = "other"
)

type categoryKeywords struct {
	category string
	keywords []string
}

// Keyword lists are matched as substrings of the normalized item name.
// Order matters: "frozen chicken" should classify as meat, so meat comes
// before frozen.
var defaultKeywords = []categoryKeywords{
	{CategoryMeat, []string{
		"chicken", "beef", "pork", "lamb", "turkey", "mince", "bacon",
		"sausage", "ham", "steak", "fish", "salmon", "tuna", "cod", "prawn",
	}},
	{CategoryDairy, []string{
		"milk", "cheese", "butter", "yoghurt", "yogurt", "cream", "egg",
	}},
	{CategoryProduce, []string{
		"apple", "banana", "orange", "lemon", "grape", "berry", "tomato",
		"potato", "onion", "garlic", "carrot", "lettuce", "spinach", "pepper",
		"cucumber", "broccoli", "mushroom", "avocado", "salad", "fruit", "veg",
	}},
	{CategoryPantry, []string{
		"pasta", "rice", "flour", "sugar", "salt", "oil", "sauce", "tin",
		"can", "bean", "lentil", "cereal", "oat", "spice", "stock", "honey",
	}},
	{CategoryFrozen, []string{
		"frozen", "pizza", "chips", "ice lolly",
	}},
	{CategoryBakery, []string{
		"bread", "roll", "bagel", "croissant", "bun", "cake", "muffin",
		"pastry", "loaf",
	}},
	{CategoryBeverages, []string{
		"water", "juice", "squash", "tea", "coffee", "cola", "lemonade",
		"beer", "wine", "drink",
	}},
}

// ItemClassifier assigns a category to raw item names by keyword matching.
// Deterministic, no side effects.
type ItemClassifier struct {
	keywords []categoryKeywords
}

// NewItemClassifier returns a classifier using the default keyword lists.
func NewItemClassifier() *ItemClassifier {
	return &ItemClassifier{keywords: defaultKeywords}
}

// Classify returns the category tag for an item name.
func (c *ItemClassifier) Classify(name string) string {
	normalized := matching.NormalizeName(name)
	if normalized == "" {
		return CategoryOther
	}
	for _, group := range c.keywords {
		for _, kw := range group.keywords {
			if strings.Contains(normalized, kw) {
				return group.category
			}
		}
	}
	return CategoryOther
}

// ClassifyItems returns a copy of items with Category filled in where absent.
func (c *ItemClassifier) ClassifyItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Category == "" {
			out[i].Category = c.Classify(out[i].Name)
		}
		if out[i].Priority == "" {
			out[i].Priority = PriorityEssential
		}
	}
	return out
}
