package generator

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fallbackArtifactName is used when sanitation leaves nothing usable.
const fallbackArtifactName = "document"

// maxNameRunes caps generated artifact names.
const maxNameRunes = 200

// illegal characters for artifact names across the stores we target.
const illegalNameChars = `/\:*?"<>|`

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// sanitizeName makes a generated name safe for the content store: diacritics
// folded, illegal characters stripped, whitespace runs collapsed, trimmed and
// truncated. Empty results fall back to a fixed name.
func sanitizeName(name string) string {
	if folded, _, err := transform.String(diacriticFolder, name); err == nil {
		name = folded
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(illegalNameChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	name = strings.Join(strings.Fields(b.String()), " ")

	if runes := []rune(name); len(runes) > maxNameRunes {
		name = strings.TrimSpace(string(runes[:maxNameRunes]))
	}
	if name == "" {
		return fallbackArtifactName
	}
	return name
}
