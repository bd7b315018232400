// Package neighborhoods reconcilia variantes de texto libre de un mismo barrio
// ("Barrio San José", "san jose", "B° San José") bajo una clave canónica.
package neighborhoods

import (
	"sort"
	"strings"
	"unicode"

	"github.com/hashicorp/go-set/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopwords son tokens genéricos que no distinguen un barrio de otro.
var stopwords = map[string]struct{}{
	"barrio": {},
	"sum":    {},
	"b°":     {},
	"bº":     {},
}

// abreviaturas de "barrio" que suelen venir pegadas al nombre: "B°San José".
var gluedPrefixes = []string{"b°", "bº"}

func removeDiacritics(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize devuelve la clave canónica de raw. Una clave vacía significa
// "sin agrupar" (el texto sólo tenía espacios, puntuación o stopwords).
func Normalize(raw string) string {
	s := strings.ToLower(removeDiacritics(raw))

	// puntuación -> espacio; ° y º se conservan porque forman "b°"/"bº"
	s = strings.Map(func(r rune) rune {
		if r == '°' || r == 'º' {
			return r
		}
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, s)

	tokens := make([]string, 0, 4)
	for _, tok := range strings.Fields(s) {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		for _, p := range gluedPrefixes {
			if strings.HasPrefix(tok, p) {
				tok = strings.TrimPrefix(tok, p)
				break
			}
		}
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return strings.Join(tokens, " ")
}

// Group agrupa nombres crudos (uno por atención) por clave canónica.
type Group struct {
	Key string
	// Name es la primera variante vista para la clave, en orden de entrada.
	Name     string
	Total    int
	Variants []string
}

// GroupNames agrupa names (uno por atención).
func GroupNames(names []string) []Group {
	rows := make([]Counted, 0, len(names))
	for _, n := range names {
		rows = append(rows, Counted{Name: n, Count: 1})
	}
	return GroupCounts(rows)
}

// Counted es un barrio crudo con su cantidad, tal como sale de las estadísticas.
type Counted struct {
	Name  string
	Count int
}

// GroupCounts agrupa conteos por clave canónica. El orden de salida es
// Total desc, Key asc; las claves vacías se descartan.
func GroupCounts(rows []Counted) []Group {
	type acc struct {
		name     string
		total    int
		variants *set.Set[string]
	}

	byKey := map[string]*acc{}
	for _, r := range rows {
		key := Normalize(r.Name)
		if key == "" || r.Count <= 0 {
			continue
		}
		display := strings.Join(strings.Fields(r.Name), " ")

		a, ok := byKey[key]
		if !ok {
			a = &acc{name: display, variants: set.New[string](2)}
			byKey[key] = a
		}
		a.total += r.Count
		a.variants.Insert(display)
	}

	out := make([]Group, 0, len(byKey))
	for key, a := range byKey {
		variants := a.variants.Slice()
		sort.Strings(variants)
		out = append(out, Group{
			Key:      key,
			Name:     a.name,
			Total:    a.total,
			Variants: variants,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Key < out[j].Key
	})
	return out
}
