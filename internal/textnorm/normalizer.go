// Package textnorm repairs adversarially mangled message text into a
// canonical form safe for URL extraction: Unicode compatibility folding,
// Cyrillic homoglyph substitution, scheme-token separation, and TLD slash
// repair for bare domains with an elided path separator.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// homoglyphs maps the Cyrillic lookalikes scammers use to spoof
// "discord"-like domains onto their ASCII equivalents.
var homoglyphs = strings.NewReplacer(
	"з", "3",
	"ч", "4",
	"а", "a",
	"в", "b",
	"с", "c",
	"е", "e",
	"н", "h",
	"к", "k",
	"м", "m",
	"о", "o",
	"р", "p",
	"т", "t",
	"х", "x",
	"у", "y",
)

// markdown strips the formatting characters the chat platform renders, so a
// URL split across bold/spoiler markers still extracts.
var markdown = strings.NewReplacer(
	"||", "",
	"*", "",
	"_", "",
	"~", "",
	"`", "",
)

// Normalizer is a pure text repair stage. The TLD table seeds the slash
// repair for bare domains.
type Normalizer struct {
	tlds []string
}

// New creates a Normalizer using the given TLD table.
func New(tlds []string) *Normalizer {
	return &Normalizer{tlds: tlds}
}

// Normalize repairs text for URL extraction. It has no side effects and is
// idempotent on its homoglyph substitution.
func (n *Normalizer) Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = markdown.Replace(text)
	text = separateSchemes(text)
	text = strings.ReplaceAll(text, "://\n", "://")
	text = FoldHomoglyphs(text)
	return n.repairBareDomains(text)
}

// FoldHomoglyphs replaces Cyrillic homoglyphs with their Latin lookalikes.
func FoldHomoglyphs(text string) string {
	return homoglyphs.Replace(text)
}

// separateSchemes inserts a space before every "http" token that is not
// already preceded by whitespace, recovering URLs concatenated with prose.
func separateSchemes(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)
	for i := 0; i < len(text); i++ {
		if strings.HasPrefix(text[i:], "http") && i > 0 {
			prev := text[i-1]
			if prev != ' ' && prev != '\t' && prev != '\n' && prev != '\r' {
				b.WriteByte(' ')
			}
		}
		b.WriteByte(text[i])
	}
	return b.String()
}

// repairBareDomains inserts a "/" after the TLD of any URL token whose path
// separator was elided, e.g. "https://discord.giftnitro" becomes
// "https://discord.gift/nitro". The rightmost TLD occurrence wins; among
// equal positions the longest TLD wins.
func (n *Normalizer) repairBareDomains(text string) string {
	for _, token := range strings.Fields(text) {
		if !strings.HasPrefix(token, "http") {
			continue
		}
		domain, path := splitAuthority(token)
		if domain == "" || path != "" {
			continue
		}
		tld, pos := n.bestTLD(domain)
		if tld == "" {
			continue
		}
		end := pos + len(tld)
		if end >= len(domain) {
			continue
		}
		repaired := domain[:end] + "/" + domain[end:]
		text = strings.Replace(text, domain, repaired, 1)
	}
	return text
}

// splitAuthority extracts the authority and path components of a URL token.
func splitAuthority(token string) (domain, path string) {
	rest := token
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}
	if idx := strings.IndexAny(rest, "/?#"); idx >= 0 {
		return rest[:idx], rest[idx:]
	}
	return rest, ""
}

// bestTLD picks the rightmost, longest TLD occurring in domain. Returns
// ("", -1) when no TLD matches.
func (n *Normalizer) bestTLD(domain string) (string, int) {
	best, bestPos := "", -1
	for _, tld := range n.tlds {
		pos := strings.LastIndex(domain, tld)
		if pos < 0 {
			continue
		}
		if pos > bestPos || (pos == bestPos && len(tld) > len(best)) {
			best, bestPos = tld, pos
		}
	}
	return best, bestPos
}
