// Package normalize cleans dish names coming out of spreadsheet exports.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UTF-8 accented characters that were read back as Windows-1252.
var garbled = strings.NewReplacer(
	"Ã©", "é",
	"Ã³", "ó",
	"Ã\u00ad", "í",
	"Ã±", "ñ",
	"Ãº", "ú",
	"Ã¡", "á",
	"Ã\u00a0", "à",
	"Ã¨", "è",
	"Ã²", "ò",
	"Ã¼", "ü",
	"Ã§", "ç",
	"Ã‰", "É",
	"Ã“", "Ó",
	"Ãš", "Ú",
	"Ã‘", "Ñ",
	"Âº", "º",
	"Âª", "ª",
)

// Known misspellings in the kitchen's spreadsheets, matched as whole words.
var misspellings = []struct{ wrong, right string }{
	{"orginal", "original"},
	{"Haburguesa", "Hamburguesa"},
	{"Cesar", "César"},
	{"frias", "fritas"},
	{"mejicana", "mexicana"},
	{"panadera", "panaderas"},
	{"Creps", "Crepes"},
	{"Risoto", "Risotto"},
	{"Lasaa", "Lasagna"},
	{"Lasaña", "Lasagna"},
	{"Boloesa", "Boloñesa"},
	{"Jamn", "Jamón"},
	{"Caa", "Caña"},
	{"Bilbana", "Bilbaína"},
	{"Miexta", "mixta"},
}

type correction struct {
	re    *regexp.Regexp
	right string
}

var corrections = func() []correction {
	out := make([]correction, 0, len(misspellings))
	for _, m := range misspellings {
		out = append(out, correction{
			re:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(m.wrong) + `\b`),
			right: m.right,
		})
	}
	return out
}()

var functionWords = map[string]struct{}{
	"de": {}, "del": {}, "la": {}, "las": {}, "los": {}, "y": {}, "con": {},
	"a": {}, "al": {}, "en": {}, "el": {}, "un": {}, "una": {}, "o": {},
}

// DishName returns the display form of a raw dish name. Inputs that carry no
// dish (blank, "-" or ",") yield "". DishName is idempotent.
func DishName(raw string) string {
	s := strings.TrimSpace(Repair(raw))
	if s == "" || s == "-" || s == "," {
		return ""
	}

	for _, c := range corrections {
		s = c.re.ReplaceAllLiteralString(s, c.right)
	}

	return titleCase(s)
}

// Repair strips replacement characters and undoes the known mis-decodings of
// UTF-8 accented letters.
func Repair(s string) string {
	s = strings.ReplaceAll(s, string(utf8.RuneError), "")
	return garbled.Replace(s)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	out := make([]string, len(words))
	for i, w := range words {
		lower := strings.ToLower(w)
		_, fn := functionWords[lower]
		if i > 0 && fn && !strings.HasSuffix(words[i-1], ":") {
			out[i] = lower
			continue
		}
		out[i] = capitalize(w)
	}
	return strings.Join(out, " ")
}

func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return strings.ToLower(w)
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
}

// StripAccents removes combining marks after canonical decomposition.
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lower-cases s and strips its accents, for accent-insensitive matching.
func Fold(s string) string {
	return StripAccents(strings.ToLower(s))
}
