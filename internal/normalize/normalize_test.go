package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDishName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"dash", "-", ""},
		{"comma", ",", ""},
		{"title case with function words", "pizza de jamón y queso", "Pizza de Jamón y Queso"},
		{"first word always capitalized", "de la casa", "De la Casa"},
		{"upper case input", "ARROZ CON POLLO", "Arroz con Pollo"},
		{"garbled accents", "Macarrones a la BoloÃ±esa", "Macarrones a la Boloñesa"},
		{"garbled i", "PurÃ© de calabacÃ\u00adn", "Puré de Calabacín"},
		{"garbled trailing a grave", "PatÃ\u00a0", "Patà"},
		{"replacement char stripped", "Jam�n York", "Jamón York"},
		{"misspelling", "haburguesa de ternera", "Hamburguesa de Ternera"},
		{"misspelling accent", "Ensalada cesar", "Ensalada César"},
		{"lasagna", "Lasaña de verduras", "Lasagna de Verduras"},
		{"misspelling mid word untouched", "Cesaria", "Cesaria"},
		{"colon restarts clause", "Menú especial: la sopa", "Menú Especial: La Sopa"},
		{"collapses whitespace", "  Sopa   de  pescado ", "Sopa de Pescado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DishName(tt.in))
		})
	}
}

func TestDishNameIdempotent(t *testing.T) {
	inputs := []string{
		"pizza de jamón y queso",
		"Macarrones a la BoloÃ±esa",
		"Ensalada cesar con pollo",
		"Patatas frias",
		"Menú especial: la sopa",
		"Crema de calabaza O puerro",
		"Tortilla panadera",
		"Ensalada miexta",
	}
	for _, in := range inputs {
		once := DishName(in)
		assert.Equal(t, once, DishName(once), "input %q", in)
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "salmon a la plancha", Fold("Salmón a la Plancha"))
	assert.Equal(t, "pina", Fold("PIÑA"))
	assert.Equal(t, Fold("lácteos"), Fold("LACTEOS"))
}
