package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeString(t *testing.T) {
	assert.Equal(t, "juanperez", NormalizeString("Juan Pérez"))
	assert.Equal(t, "sanchezmaria", NormalizeString("SÁNCHEZ, María"))
	assert.Equal(t, "swissmedical", NormalizeString("Swiss-Medical"))
}

func TestCompareNames(t *testing.T) {
	assert.True(t, CompareNames("JUAN PEREZ", "Juan Pérez"))
	assert.True(t, CompareNames("JUAN PEREZ", "Sr. Juan Perez"))
	assert.True(t, CompareNames("PEREZ JUAN", "Juan Perez"))
	assert.True(t, CompareNames("MARIA GONZALEZ", "MARIA LAURA GONZALEZ"))
	assert.False(t, CompareNames("JUAN PEREZ", "JUANA PAEZ"))
	assert.False(t, CompareNames("JUAN PEREZ", ""))
}

func TestCalculateNameSimilarity(t *testing.T) {
	tests := []struct {
		name   string
		a, b   string
		minSim float64
		maxSim float64
	}{
		{"identical", "Edenor", "EDENOR", 1.0, 1.0},
		{"accent only", "Federación Patronal", "Federacion Patronal", 1.0, 1.0},
		{"ocr typo", "Metrogas", "Metr0gas", 0.85, 0.9},
		{"unrelated", "Edenor", "Claro", 0.0, 0.4},
		{"one empty", "Edenor", "", 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := CalculateNameSimilarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, sim, tt.minSim)
			assert.LessOrEqual(t, sim, tt.maxSim)
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("camuzzi", "camuzzi"))
	assert.Equal(t, 1, levenshteinDistance("camuzzi", "camuzi"))
	assert.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 5, levenshteinDistance("", "aysa5"))
}
