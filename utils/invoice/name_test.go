package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPersonName(t *testing.T) {
	blacklist := DefaultNameBlacklist()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"first and last", "JUAN PEREZ", true},
		{"accented mixed case", "María José Núñez", true},
		{"five tokens", "ANA MARIA DE LOS SANTOS", true},
		{"single token", "JUAN", false},
		{"too short", "AB C", false},
		{"too long", "JUANA MARIA FLORENCIA GONZALEZ DE LA SANTISIMA TRINIDAD", false},
		{"contains digits", "JUAN PEREZ 123", false},
		{"six tokens", "UNO DOS TRES CUATRO CINCO SEIS", false},
		{"one letter token", "JUAN X PEREZ", false},
		{"provider with legal suffix", "EDENOR DISTRIBUIDORA S.A.", false},
		{"starts with jargon", "TITULAR DEL SERVICIO", false},
		{"ends with jargon", "DATOS DEL CLIENTE", false},
		{"place", "CAPITAL FEDERAL", false},
		{"company suffix", "LOGISTICA DEL SUR SRL", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPersonName(tt.input, blacklist))
		})
	}
}

func TestExtractCustomerName(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		want       string
		strategy   string
		confidence int
	}{
		{
			name:       "labeled and truncated at tax id",
			text:       "Factura B\nTitular: MARIA GONZALEZ CUIT 27-12345678-9",
			want:       "MARIA GONZALEZ",
			strategy:   "labeled",
			confidence: 90,
		},
		{
			name:       "label on its own line",
			text:       "Datos del cliente\nJuan Carlos Pérez\nAv. Siempreviva 742",
			want:       "JUAN CARLOS PÉREZ",
			strategy:   "labeled",
			confidence: 90,
		},
		{
			name:       "label skips jargon captures",
			text:       "Nombre del titular: ROSA MARTINEZ",
			want:       "ROSA MARTINEZ",
			strategy:   "labeled",
			confidence: 90,
		},
		{
			name:       "column gap ends the value",
			text:       "Sr./a: LAURA BENITEZ      Fecha: 01/02/2025",
			want:       "LAURA BENITEZ",
			strategy:   "labeled",
			confidence: 90,
		},
		{
			name:       "payer label",
			text:       "Pagador: Sofia Ruiz\nImporte 1.000,00",
			want:       "SOFIA RUIZ",
			strategy:   "labeled",
			confidence: 90,
		},
		{
			name:       "holder line above its tax id",
			text:       "Factura B\nMARTIN ALVAREZ\nC.U.I.T. 20-12345678-9",
			want:       "MARTIN ALVAREZ",
			strategy:   "labeled",
			confidence: 90,
		},
		{
			name:       "near the supply address",
			text:       "Factura de servicio\nRoberto Carlos Gomez\nDomicilio de suministro: Av. Rivadavia 1234",
			want:       "ROBERTO CARLOS GOMEZ",
			strategy:   "address-context",
			confidence: 80,
		},
		{
			name:       "uppercase shape near the top",
			text:       "LUCIA FERNANDEZ\nResumen de cuenta\nPeriodo 01/2025",
			want:       "LUCIA FERNANDEZ",
			strategy:   "shape",
			confidence: 65,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &trace{}
			sel := extractCustomerName(Normalize(tt.text), DefaultRules(), tr)

			require.NotNil(t, sel, "trace: %v", tr.entries())
			assert.Equal(t, tt.want, sel.name)
			assert.Equal(t, tt.strategy, sel.strategy)
			assert.Equal(t, tt.confidence, sel.confidence)
		})
	}
}

func TestExtractCustomerName_BlacklistedLines(t *testing.T) {
	text := "EDENOR DISTRIBUIDORA S.A.\nEDENOR DISTRIBUIDORA SA\nFACTURA ORIGINAL\nCONSUMIDOR FINAL"
	tr := &trace{}

	assert.Nil(t, extractCustomerName(Normalize(text), DefaultRules(), tr))
	assert.True(t, debugContains(tr.entries(), "customer name not detected"))
}
