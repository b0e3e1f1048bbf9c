package roster

import "strings"

type Category string

const (
	Night    Category = "夜班"
	Morning  Category = "早班"
	Middle   Category = "中班"
	Rest     Category = "休息"
	Leave    Category = "休假"
	Business Category = "出差"
	Sick     Category = "病假"
	Other    Category = "其他"
	Unknown  Category = "未知"
)

// Categories lists the categories in display order.
var Categories = []Category{Night, Morning, Middle, Rest, Leave, Business, Sick, Other}

var emoji = map[Category]string{
	Night:    "🌙",
	Morning:  "🌅",
	Middle:   "🌤️",
	Rest:     "😴",
	Leave:    "🏖️",
	Business: "✈️",
	Sick:     "🤒",
}

func (c Category) Emoji() string {
	if e, ok := emoji[c]; ok {
		return e
	}
	return "📌"
}

// Working reports whether the category is an on-site shift.
func (c Category) Working() bool {
	return c == Night || c == Morning || c == Middle
}

// Classify maps a shift code such as N1, M, A2, O or BTD to its category.
func Classify(code string) Category {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Unknown
	}

	// Leave codes first: AL and ML would otherwise match the shift prefixes.
	switch code {
	case "SL":
		return Sick
	case "ML", "AL", "PL", "P":
		return Leave
	case "O":
		return Rest
	case "BTD":
		return Business
	}

	switch code[0] {
	case 'N':
		return Night
	case 'M':
		return Morning
	case 'A':
		return Middle
	}
	return Other
}

// Analyze counts codes per category. Empty codes are not counted.
func Analyze(codes []string) map[Category]int {
	stats := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		stats[c] = 0
	}
	for _, code := range codes {
		cat := Classify(code)
		if cat == Unknown {
			continue
		}
		stats[cat]++
	}
	return stats
}
