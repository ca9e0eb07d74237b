package scraper

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// NormalizeKey turns a portal column header into a stable field key:
// accents stripped, non-alphanumerics collapsed to single underscores,
// lowercased. "Consulta Protocolo4" becomes "consulta_protocolo4",
// "Inutilização4" becomes "inutilizacao4".
func NormalizeKey(key string) string {
	decomposed := norm.NFD.String(key)
	stripped := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, decomposed)

	key = nonAlnumRe.ReplaceAllString(stripped, "_")
	return strings.ToLower(strings.Trim(key, "_"))
}
