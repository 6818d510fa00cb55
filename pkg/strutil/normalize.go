// Package strutil normalização de texto para busca de produtos.
package strutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize remove acentos e baixa a caixa ("Feijão Carioca" -> "feijao carioca").
// Usado na busca de produtos para que "feijao" encontre "Feijão".
func Normalize(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// ContainsNormalized informa se needle ocorre em haystack ignorando
// acentuação e caixa.
func ContainsNormalized(haystack, needle string) bool {
	return strings.Contains(Normalize(haystack), Normalize(needle))
}
