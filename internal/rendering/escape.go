package rendering

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// unsupportedMark stands in for each run of characters pdflatex cannot typeset
// under T1 with utf8 inputenc, e.g. Devanagari.
const unsupportedMark = "?"

// typesetPunct are the non-Latin-1 characters inputenc maps for T1.
var typesetPunct = map[rune]bool{
	'–': true, '—': true, '‘': true, '’': true, '“': true, '”': true, '…': true, '•': true,
}

func typesettable(r rune) bool {
	switch {
	case r < 0x80:
		return unicode.IsPrint(r)
	case r >= 0xA0 && r <= 0x17F:
		return true
	default:
		return typesetPunct[r]
	}
}

// fold returns r itself when it can be typeset, or its base letter when r is a
// Latin letter with diacritics outside Latin-1 (ṭ -> t). ok is false otherwise.
func fold(r rune) (rune, bool) {
	if typesettable(r) {
		return r, true
	}
	decomposed := []rune(norm.NFD.String(string(r)))
	if len(decomposed) < 2 || !typesettable(decomposed[0]) {
		return 0, false
	}
	for _, m := range decomposed[1:] {
		if !unicode.Is(unicode.Mn, m) {
			return 0, false
		}
	}
	return decomposed[0], true
}

// EscapeLaTeX escapes text scraped from the portal for use in the template.
// Besides the LaTeX specials (\ { } $ & % # ^ _ ~) it replaces < > | which
// render as other glyphs under OT1, and flattens line breaks to spaces.
// Characters the T1 font cannot show are folded to their base letter where one
// exists and otherwise replaced, one unsupportedMark per run, so compilation
// never halts on script it has no glyphs for.
func EscapeLaTeX(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text) + len(text)/4)

	inRun := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			r = ' '
		}
		folded, ok := fold(r)
		if !ok {
			if !inRun {
				b.WriteString(unsupportedMark)
			}
			inRun = true
			continue
		}
		inRun = false

		switch r = folded; r {
		case '\\':
			b.WriteString(`\textbackslash{}`)
		case '{', '}', '$', '&', '%', '#', '_':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '^':
			b.WriteString(`\textasciicircum{}`)
		case '~':
			b.WriteString(`\textasciitilde{}`)
		case '<':
			b.WriteString(`\textless{}`)
		case '>':
			b.WriteString(`\textgreater{}`)
		case '|':
			b.WriteString(`\textbar{}`)
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}
