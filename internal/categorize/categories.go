package categorize

import "strings"

// Category is one of the closed set of spending categories the remote
// service is instructed to choose from.
type Category string

const (
	CategoryProduce      Category = "Fruits & Vegetables"
	CategoryDairy        Category = "Dairy & Eggs"
	CategoryMeat         Category = "Meat & Fish"
	CategoryBakery       Category = "Bakery"
	CategoryPantry       Category = "Pantry"
	CategoryFrozen       Category = "Frozen"
	CategorySnacks       Category = "Snacks & Sweets"
	CategoryBeverages    Category = "Beverages"
	CategoryHousehold    Category = "Household"
	CategoryPersonalCare Category = "Personal Care"
	CategoryOthers       Category = "Others"
)

// AllCategories is the closed set in the order rendered into the outbound
// request. CategoryOthers is last and doubles as the fallback.
var AllCategories = []Category{
	CategoryProduce,
	CategoryDairy,
	CategoryMeat,
	CategoryBakery,
	CategoryPantry,
	CategoryFrozen,
	CategorySnacks,
	CategoryBeverages,
	CategoryHousehold,
	CategoryPersonalCare,
	CategoryOthers,
}

// NormalizeCategory maps a label returned by the remote service onto the
// closed set, case-insensitively. An unrecognized label becomes
// CategoryOthers rather than propagating.
func NormalizeCategory(label string) Category {
	needle := strings.ToLower(strings.TrimSpace(label))
	for _, c := range AllCategories {
		if strings.ToLower(string(c)) == needle {
			return c
		}
	}
	return CategoryOthers
}
