package quest

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// DisplayName renders an entity key as a readable name:
// "spirit_guardian" becomes "Spirit Guardian". Keys that already read
// as names pass through with casing normalized.
func DisplayName(key string) string {
	name := strings.NewReplacer("_", " ", "-", " ").Replace(key)
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return key
	}
	return titleCaser.String(name)
}
