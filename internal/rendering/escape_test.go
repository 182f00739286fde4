package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLaTeX(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Patil vs Jadhav", "Patil vs Jadhav"},
		{"case number", "RCS/120/2019", "RCS/120/2019"},
		{"backslash", `A\B`, `A\textbackslash{}B`},
		{"braces", "x{y}", `x\{y\}`},
		{"dollar", "Rs $100", `Rs \$100`},
		{"ampersand", "Shinde & Ors", `Shinde \& Ors`},
		{"percent", "50%", `50\%`},
		{"hash", "Item #4", `Item \#4`},
		{"underscore", "u_s", `u\_s`},
		{"caret", "a^b", `a\textasciicircum{}b`},
		{"tilde", "~x", `\textasciitilde{}x`},
		{"angle brackets", "<Adv>", `\textless{}Adv\textgreater{}`},
		{"bar", "a|b", `a\textbar{}b`},
		{"newline", "Patil\nvs Jadhav", "Patil vs Jadhav"},
		{"latin-1 kept", "Café Müller", "Café Müller"},
		{"latin extended-a kept", "Łódź", "Łódź"},
		{"diacritics folded", "Kṛṣṇa Rāo", "Krsna Rāo"},
		{"devanagari run replaced once", "न्यायालय", "?"},
		{"mixed scripts", "Court न्यायालय 2", "Court ? 2"},
		{"dash kept", "10:00 – 11:00", "10:00 – 11:00"},
		{"rupee replaced", "₹500", "?500"},
		{"no-break space", "Sr.\u00a0Div", "Sr. Div"},
		{"mixed", `${}~&%#^_\`, `\$\{\}\textasciitilde{}\&\%\#\textasciicircum{}\_\textbackslash{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLaTeX(tt.in))
		})
	}
}
