package neighborhoods

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Barrio San José":     "san jose",
		"san jose":            "san jose",
		"  SAN   JOSÉ  ":      "san jose",
		"B° San José":         "san jose",
		"Bº San José":         "san jose",
		"B°San José":          "san jose",
		"barrio Güemes":       "guemes",
		"Pueyrredón, barrio":  "pueyrredon",
		"SUM Villa María":     "villa maria",
		"Alta Córdoba":        "alta cordoba",
		"":                    "",
		"   ":                 "",
		"Barrio":              "",
		"b°":                  "",
		"Nueva-Córdoba":       "nueva cordoba",
		"Cerro de las Rosas ": "cerro de las rosas",
		"Sumampa":             "sumampa",
		"Barrio Bº Norte":     "norte",
		"barrio 25 de Mayo":   "25 de mayo",
	}

	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestGroupNames_MergesVariants(t *testing.T) {
	groups := GroupNames([]string{
		"Barrio San José",
		"Centro",
		"san jose",
		"",
		"B° San  José",
		"centro",
		"Barrio",
	})

	require.Len(t, groups, 2)

	sj := groups[0]
	assert.Equal(t, "san jose", sj.Key)
	assert.Equal(t, "Barrio San José", sj.Name, "representative is the first seen variant")
	assert.Equal(t, 3, sj.Total)
	assert.Equal(t, []string{"Barrio San José", "B° San José", "san jose"}, sj.Variants)

	centro := groups[1]
	assert.Equal(t, "centro", centro.Key)
	assert.Equal(t, "Centro", centro.Name)
	assert.Equal(t, 2, centro.Total)
}

func TestGroupCounts_TieBreakByKey(t *testing.T) {
	groups := GroupCounts([]Counted{
		{Name: "Norte", Count: 2},
		{Name: "Alberdi", Count: 2},
		{Name: "Barrio Alberdi", Count: 1},
		{Name: "Sur", Count: 0},
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "alberdi", groups[0].Key)
	assert.Equal(t, 3, groups[0].Total)
	assert.Equal(t, "norte", groups[1].Key)
}

func TestGroupNames_EmptyInput(t *testing.T) {
	assert.Empty(t, GroupNames(nil))
}
