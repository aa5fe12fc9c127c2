// Package slip turns free-text bet slips into structured legs.
package slip

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// bulletReplacer maps carriage returns and bullet glyphs onto newlines
var bulletReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"•", "\n",
	"◦", "\n",
	"▪", "\n",
	"▫", "\n",
	"●", "\n",
	"○", "\n",
	"■", "\n",
	"□", "\n",
	"‣", "\n",
	"⁃", "\n",
	"∙", "\n",
	"·", "\n",
)

// Normalize cleans slip text: NFKC, bullets and CRs to newlines, whitespace
// runs collapsed, lines trimmed, empty lines dropped.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFKC.String(text)
	text = bulletReplacer.Replace(text)

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		// Fields splits on unicode whitespace, which also trims the line
		collapsed := strings.Join(strings.Fields(line), " ")
		if collapsed == "" {
			continue
		}
		kept = append(kept, collapsed)
	}

	return strings.Join(kept, "\n")
}

// normalizeSelection flattens a single selection onto one line
func normalizeSelection(selection string) string {
	return strings.ReplaceAll(Normalize(selection), "\n", " ")
}

// slugify renders text as lowercase ASCII alphanumeric runs joined by hyphens
func slugify(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, strings.ToLower(text))
	if err != nil {
		stripped = strings.ToLower(text)
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingHyphen = false
			continue
		}
		pendingHyphen = true
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}
