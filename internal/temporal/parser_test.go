package temporal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayLevel(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		year  int
		month int
		day   int
	}{
		{"spelled out", "dame las asistencias del 10 de diciembre del 2022", 2022, 12, 10},
		{"spelled out, de variant", "votaciones del 3 de mayo de 2021", 2021, 5, 3},
		{"abbreviated month", "asistencias del 21 de oct del 2022", 2022, 10, 21},
		{"setiembre variant", "sesión del 5 de setiembre del 2023", 2023, 9, 5},
		{"slash date", "que paso el 10/12/2022 en el congreso", 2022, 12, 10},
		{"dash date", "asistencias del 21-10-2022", 2022, 10, 21},
		{"dot date", "votaciones del 21.10.2022", 2022, 10, 21},
		{"uppercase input", "Asistencias del 10 de Diciembre del 2022", 2022, 12, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Parse(tt.text)
			require.NotNil(t, f)
			assert.Equal(t, KindDay, f.Kind)
			assert.Equal(t, tt.year, f.Year)
			assert.Equal(t, tt.month, f.Month)
			assert.Equal(t, tt.day, f.Day)
		})
	}
}

func TestParseMonthLevel(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		year  int
		month int
	}{
		{"month name", "dame las asistencias de octubre del 2022", 2022, 10},
		{"month name, de variant", "votaciones de marzo de 2023", 2023, 3},
		{"abbreviated", "asistencias de dic del 2022", 2022, 12},
		{"numeric slash", "asistencias de 10/2022", 2022, 10},
		{"numeric dash", "votaciones de 3-2021", 2021, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Parse(tt.text)
			require.NotNil(t, f)
			assert.Equal(t, KindMonth, f.Kind)
			assert.Equal(t, tt.year, f.Year)
			assert.Equal(t, tt.month, f.Month)
			assert.Equal(t, 0, f.Day)
		})
	}
}

func TestParseYearAndRange(t *testing.T) {
	f := Parse("todas las votaciones del 2022")
	require.NotNil(t, f)
	assert.Equal(t, KindYear, f.Kind)
	assert.Equal(t, 2022, f.Year)

	// Ranges win over the bare-year match and are sorted ascending.
	for _, text := range []string{
		"votaciones 2021-2023",
		"votaciones del 2021 al 2023",
		"votaciones de 2023 a 2021",
		"asistencias desde 2021 hasta 2023",
	} {
		f := Parse(text)
		require.NotNil(t, f, text)
		assert.Equal(t, KindYearRange, f.Kind, text)
		assert.Equal(t, 2021, f.YearFrom, text)
		assert.Equal(t, 2023, f.YearTo, text)
	}
}

func TestParsePrecedence(t *testing.T) {
	// A fully-qualified date must never degrade to a coarser match.
	f := Parse("10/12/2022")
	require.NotNil(t, f)
	assert.Equal(t, KindDay, f.Kind)
	assert.Equal(t, Filter{Kind: KindDay, Year: 2022, Month: 12, Day: 10}, *f)

	// A month number out of range falls through to the year match.
	f = Parse("informe 13/2022")
	require.NotNil(t, f)
	assert.Equal(t, KindYear, f.Kind)
	assert.Equal(t, 2022, f.Year)

	// A word that is not a month name falls through as well.
	f = Parse("resumen de gastos del 2022")
	require.NotNil(t, f)
	assert.Equal(t, KindYear, f.Kind)
}

func TestParseNoMatch(t *testing.T) {
	for _, text := range []string{
		"el clima está agradable",
		"quien es Sucel Paredes",
		"dame las asistencias de 1999", // outside the 2000-2099 window
		"",
	} {
		assert.Nil(t, Parse(text), text)
	}
}
