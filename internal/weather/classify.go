package weather

import "strings"

// ConditionCategory is the presentation category of a condition label.
type ConditionCategory string

const (
	CategoryClear  ConditionCategory = "clear"
	CategoryCloudy ConditionCategory = "cloudy"
	CategoryRainy  ConditionCategory = "rainy"
	CategoryOther  ConditionCategory = "other"
)

var categoryByLabel = map[string]ConditionCategory{
	"clear":   CategoryClear,
	"clouds":  CategoryCloudy,
	"rain":    CategoryRainy,
	"drizzle": CategoryRainy,
}

// Classify maps a provider condition label (e.g. "Clouds") to a category.
// Matching is case-insensitive; unknown and empty labels are CategoryOther.
func Classify(label string) ConditionCategory {
	if c, ok := categoryByLabel[strings.ToLower(strings.TrimSpace(label))]; ok {
		return c
	}
	return CategoryOther
}

// Icon returns the icon name the widget shows for the category.
// Other conditions fall back to the cloud icon.
func (c ConditionCategory) Icon() string {
	switch c {
	case CategoryClear:
		return "sun"
	case CategoryRainy:
		return "cloud-rain"
	default:
		return "cloud"
	}
}
