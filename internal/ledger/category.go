package ledger

import "regexp"

// Uncategorized labels transactions whose description carries no category marker.
const Uncategorized = "Uncategorized"

var categoryMarker = regexp.MustCompile(`\*\*(.*?)\*\*`)

// ExtractCategory returns the text between the first pair of ** markers.
// ok is false when the description has no complete pair; "****" yields ("", true).
func ExtractCategory(description string) (category string, ok bool) {
	match := categoryMarker.FindStringSubmatch(description)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// CategoryOf resolves the reporting label for a description.
func CategoryOf(description string) string {
	category, ok := ExtractCategory(description)
	if !ok || category == "" {
		return Uncategorized
	}
	return category
}
