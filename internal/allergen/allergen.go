// Package allergen infers allergen categories from Spanish dish names.
//
// Matching is a keyword heuristic: accent and case insensitive substring
// search over two static lexicons. Missed allergens and false positives are
// expected; the result is only guaranteed to be deterministic.
package allergen

import (
	"sort"
	"strings"

	"github.com/pageza/comedor/backend/internal/normalize"
	"github.com/pageza/comedor/backend/internal/types"
)

// Category identifiers.
const (
	Gluten        = "gluten"
	Crustaceos    = "crustaceos"
	Huevos        = "huevos"
	Pescado       = "pescado"
	Cacahuetes    = "cacahuetes"
	Soja          = "soja"
	Lacteos       = "lacteos"
	FrutosCascara = "frutos_cascara"
	Apio          = "apio"
	Mostaza       = "mostaza"
	Sesamo        = "sesamo"
	Sulfitos      = "sulfitos"
	Altramuces    = "altramuces"
	Moluscos      = "moluscos"
)

// Categories lists the fourteen recognized categories in a stable order.
var Categories = []string{
	Gluten, Crustaceos, Huevos, Pescado, Cacahuetes, Soja, Lacteos,
	FrutosCascara, Apio, Mostaza, Sesamo, Sulfitos, Altramuces, Moluscos,
}

var keywords = map[string][]string{
	Gluten: {
		"pan", "pasta", "espaguetis", "lasagna", "lasaña", "pizza", "hamburguesa",
		"croissant", "croisants", "donut", "donuts", "crepe", "crepes", "galleta",
		"bizcocho", "tarta", "empanada", "croqueta", "rebozado", "frito", "fritura",
		"tortita", "pancake", "ravioli", "raviolis", "canelones", "fideos",
		"macarrones", "risotto", "arroz", "paella",
	},
	Crustaceos: {
		"gamba", "gambas", "langostino", "langostinos", "cangrejo", "centollo",
		"bogavante", "langosta", "nécora",
	},
	Huevos: {
		"huevo", "huevos", "tortilla", "revuelto", "revueltos", "flan", "natillas",
		"mayonesa", "ali oli", "alioli", "carbonara", "coulant",
	},
	Pescado: {
		"pescado", "merluza", "bacalao", "salmón", "atún", "bonito", "anchoa",
		"anchoas", "sardina", "sardinas", "boquerón", "boquerones", "rape", "lubina",
		"dorada", "lenguado", "pez espada", "trucha", "marmitako",
	},
	Cacahuetes: {"cacahuete", "cacahuetes", "maní"},
	Soja:       {"soja", "tofu", "edamame", "salsa de soja"},
	Lacteos: {
		"leche", "queso", "yogur", "nata", "crema", "bechamel", "besciamella",
		"mantequilla", "parmesano", "mozzarella", "brie", "gratin", "gratinado",
		"gratinada", "flan", "natillas", "tiramisú", "porridge", "coulant",
		"tarta de queso",
	},
	FrutosCascara: {
		"nuez", "nueces", "almendra", "almendras", "avellana", "avellanas",
		"pistacho", "pistachos", "anacardo", "anacardos", "castaña", "castañas",
		"piñón", "piñones", "macadamia",
	},
	Apio:       {"apio"},
	Mostaza:    {"mostaza"},
	Sesamo:     {"sésamo", "sesamo", "tahini"},
	Sulfitos:   {"vino", "vinagre", "balsámico"},
	Altramuces: {"altramuz", "altramuces"},
	Moluscos: {
		"calamar", "calamares", "sepia", "pulpo", "almeja", "almejas", "mejillón",
		"mejillones", "ostra", "ostras", "vieira", "vieiras", "berberecho",
		"berberechos", "caracol", "caracoles", "marisco",
	},
}

// Composite dishes whose recipe implies allergens the name does not spell out.
var dishTypes = map[string][]string{
	"pizza":       {Gluten, Lacteos},
	"hamburguesa": {Gluten, Lacteos},
	"lasagna":     {Gluten, Lacteos, Huevos},
	"lasaña":      {Gluten, Lacteos, Huevos},
	"pasta":       {Gluten},
	"risotto":     {Lacteos},
	"croqueta":    {Gluten, Lacteos, Huevos},
	"tarta":       {Gluten, Lacteos, Huevos},
	"flan":        {Lacteos, Huevos},
	"natillas":    {Lacteos, Huevos},
	"tiramisú":    {Gluten, Lacteos, Huevos},
	"paella":      {Moluscos},
	"marisco":     {Crustaceos, Moluscos},
	"carbonara":   {Gluten, Lacteos, Huevos},
	"gratinado":   {Lacteos},
	"gratinada":   {Lacteos},
	"bechamel":    {Gluten, Lacteos},
	"rebozado":    {Gluten, Huevos},
	"empanada":    {Gluten},
	"tortilla":    {Huevos},
	"crema":       {Lacteos},
}

type rule struct {
	needle     string
	categories []string
}

// Folded lexicons, built once.
var rules = func() []rule {
	var out []rule
	for _, cat := range Categories {
		for _, kw := range keywords[cat] {
			out = append(out, rule{needle: normalize.Fold(kw), categories: []string{cat}})
		}
	}
	phrases := make([]string, 0, len(dishTypes))
	for phrase := range dishTypes {
		phrases = append(phrases, phrase)
	}
	sort.Strings(phrases)
	for _, phrase := range phrases {
		out = append(out, rule{needle: normalize.Fold(phrase), categories: dishTypes[phrase]})
	}
	return out
}()

// Infer returns the sorted, deduplicated allergen categories for a dish name.
func Infer(name string) []string {
	folded := normalize.Fold(name)
	found := make(map[string]struct{})
	if strings.TrimSpace(folded) != "" {
		for _, r := range rules {
			if strings.Contains(folded, r.needle) {
				for _, c := range r.categories {
					found[c] = struct{}{}
				}
			}
		}
	}

	out := make([]string, 0, len(found))
	for c := range found {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Stats counts, per category, how many items carry it.
type Stats map[string]int

// Annotate fills the allergens of every item in data, sets the document's
// allergen list to the full category set and returns per-category counts.
func Annotate(data *types.MenuData) Stats {
	stats := make(Stats, len(Categories))
	for _, c := range Categories {
		stats[c] = 0
	}
	for wi := range data.Weeks {
		for di := range data.Weeks[wi].Days {
			for mi := range data.Weeks[wi].Days[di].Meals {
				items := data.Weeks[wi].Days[di].Meals[mi].Items
				for ii := range items {
					items[ii].Allergens = Infer(items[ii].Name)
					for _, c := range items[ii].Allergens {
						stats[c]++
					}
				}
			}
		}
	}
	data.Allergens = append([]string(nil), Categories...)
	return stats
}
