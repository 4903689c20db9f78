package lib

import (
	"crypto/rand"
	"fmt"
	"strings"
	"unicode"
)

// Slugify lowercases a name and collapses everything outside [a-z0-9] into
// single hyphens. Accented characters common in French names are folded first.
func Slugify(name string) string {
	replacer := strings.NewReplacer(
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"à", "a", "â", "a", "ç", "c",
		"î", "i", "ï", "i", "ô", "o", "ù", "u", "û", "u",
	)
	name = replacer.Replace(strings.ToLower(name))

	var b strings.Builder
	lastHyphen := true
	for _, r := range name {
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// GenerateEntityID builds a stable-looking identifier from a name slug plus a
// short random suffix, e.g. "pack-argent-k3f9".
func GenerateEntityID(name string) (string, error) {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"

	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate id suffix: %w", err)
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}

	slug := Slugify(name)
	if slug == "" {
		slug = "bundle"
	}
	return fmt.Sprintf("%s-%s", slug, string(b)), nil
}
