package invoice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocaleNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"15.420,50", 15420.50},
		{"1.234,56", 1234.56},
		{"1,234.56", 1234.56},
		{"1234,56", 1234.56},
		{"1234.56", 1234.56},
		{"32.644,98", 32644.98},
		{"1.234.567", 1234567},
		{"1,234,567", 1234567},
		{"1.234", 1234},
		{"12,5", 125},
		{"100", 100},
		{"$ 8.999,99", 8999.99},
		{"15.420,", 15420},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseLocaleNumber(tt.in), 1e-9)
		})
	}
}

func TestParseLocaleNumber_Unparseable(t *testing.T) {
	for _, in := range []string{"", "abc", ".,", "$"} {
		assert.True(t, math.IsNaN(ParseLocaleNumber(in)), "expected NaN for %q", in)
	}
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    float64
		minConf int
		maxConf int
	}{
		{
			name:    "high priority keyword",
			text:    "Detalle de consumo\nTotal a pagar: $ 12.345,67",
			want:    12345.67,
			minConf: 90,
			maxConf: 100,
		},
		{
			name:    "negative context loses to total",
			text:    "Subtotal: $ 10.000,00\nIVA 21%: $ 2.100,00\nTotal a pagar: $ 12.100,00",
			want:    12100,
			minConf: 90,
			maxConf: 100,
		},
		{
			name:    "debe abonar",
			text:    "Usted debe abonar 4.321,09 antes del vencimiento",
			want:    4321.09,
			minConf: 90,
			maxConf: 100,
		},
		{
			name:    "generic keyword",
			text:    "Importe 45.000,00",
			want:    45000,
			minConf: 90,
			maxConf: 100,
		},
		{
			name:    "largest plausible number fallback",
			text:    "Detalle\n1.234,56\n789,00",
			want:    1234.56,
			minConf: 40,
			maxConf: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &trace{}
			sel := extractAmount(Normalize(tt.text), DefaultRules(), tr)

			require.NotNil(t, sel.winner, "trace: %v", tr.entries())
			assert.InDelta(t, tt.want, sel.winner.value, 0.001)
			assert.GreaterOrEqual(t, sel.confidence, tt.minConf)
			assert.LessOrEqual(t, sel.confidence, tt.maxConf)
		})
	}
}

func TestExtractAmount_NegativeContextKeptAsAlternatives(t *testing.T) {
	text := "Subtotal: $ 10.000,00\nIVA 21%: $ 2.100,00\nTotal a pagar: $ 12.100,00"
	sel := extractAmount(Normalize(text), DefaultRules(), &trace{})

	assert.Contains(t, sel.alternatives, 10000.0)
	assert.Contains(t, sel.alternatives, 2100.0)
	assert.NotContains(t, sel.alternatives, 12100.0)
}

func TestExtractAmount_NotSelected(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		trace string
	}{
		{"below minimum", "Total a pagar: $ 5,00", "out of range"},
		{"above maximum", "Total a pagar: $ 2.500.000,00", "out of range"},
		{"account number context", "Nro de cuenta: 12.345,67", "identifier context"},
		{"tax id context", "CUIT 30-71234567-8 importe 1.234,56", "identifier context"},
		{"previous balance only", "Saldo anterior: $ 3.000,00", "below threshold"},
		{"no numbers", "Gracias por su pago", "not detected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &trace{}
			sel := extractAmount(Normalize(tt.text), DefaultRules(), tr)

			assert.Nil(t, sel.winner)
			assert.Zero(t, sel.confidence)
			assert.True(t, debugContains(tr.entries(), tt.trace), "trace: %v", tr.entries())
		})
	}
}

func TestExtractAmount_StrongLabelIgnoresNearbyIdentifiers(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"client number before the label", "Nro de cliente: 1234567 Total a pagar: $ 15.420,50"},
		{"phone after the amount", "Total a pagar $ 15.420,50   Tel: 0800-666-4001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &trace{}
			sel := extractAmount(Normalize(tt.text), DefaultRules(), tr)

			require.NotNil(t, sel.winner, "trace: %v", tr.entries())
			assert.InDelta(t, 15420.50, sel.winner.value, 0.001)
			assert.Equal(t, tierKeywordHigh, sel.winner.tier)
			assert.GreaterOrEqual(t, sel.confidence, 90)
		})
	}
}

func TestExtractAmount_DedupesByValue(t *testing.T) {
	text := "Total a pagar: $ 1.234,56\nImporte: 1.234,56\nTotal: $ 1.234,56"
	sel := extractAmount(Normalize(text), DefaultRules(), &trace{})

	require.NotNil(t, sel.winner)
	assert.Empty(t, sel.alternatives)
}

func TestExtractAmount_IgnoresDateFragments(t *testing.T) {
	sel := extractAmount(Normalize("Vencimiento 25.01.2025"), DefaultRules(), &trace{})

	assert.Nil(t, sel.winner)
	assert.Empty(t, sel.alternatives)
}

func TestExtractAmount_CustomBounds(t *testing.T) {
	rules := DefaultRules()
	rules.MaxAmount = 5_000_000

	sel := extractAmount(Normalize("Total a pagar: $ 2.500.000,00"), rules, &trace{})

	require.NotNil(t, sel.winner)
	assert.InDelta(t, 2500000.0, sel.winner.value, 0.001)
}
