package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/invoice-ocr-ar/dto"
)

type fakeLLM struct {
	name   string
	answer string
	err    error
	calls  int
	prompt string
}

func (f *fakeLLM) Name() string { return f.name }

func (f *fakeLLM) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.prompt = user
	return f.answer, f.err
}

func TestDecodeOracleAnswer(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want dto.OracleFields
	}{
		{
			name: "plain json",
			raw:  `{"provider": "Edenor", "customerName": "Juan Perez", "amount": 15420.50, "dueDate": "2025-01-25", "barcode": "0123"}`,
			want: dto.OracleFields{Provider: "Edenor", CustomerName: "Juan Perez", Amount: ptr(15420.50), DueDate: "2025-01-25", Barcode: "0123"},
		},
		{
			name: "fenced with locale amount and local date",
			raw:  "```json\n{\"amount\": \"$ 15.420,50\", \"dueDate\": \"25/01/2025\"}\n```",
			want: dto.OracleFields{Amount: ptr(15420.50), DueDate: "2025-01-25"},
		},
		{
			name: "string amount with one decimal",
			raw:  `{"amount": "15420.5"}`,
			want: dto.OracleFields{Amount: ptr(15420.5)},
		},
		{
			name: "string amount with dot decimals",
			raw:  `{"amount": " 15420.50 "}`,
			want: dto.OracleFields{Amount: ptr(15420.5)},
		},
		{
			name: "string amount with thousands dot",
			raw:  `{"amount": "15.420"}`,
			want: dto.OracleFields{Amount: ptr(15420.0)},
		},
		{
			name: "nulls and placeholders",
			raw:  `{"provider": null, "customerName": "N/A", "amount": null, "dueDate": "null", "barcode": ""}`,
			want: dto.OracleFields{},
		},
		{
			name: "unusable values dropped",
			raw:  `{"amount": 0, "dueDate": "31/02/2025", "provider": " Metrogas "}`,
			want: dto.OracleFields{Provider: "Metrogas"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeOracleAnswer(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestDecodeOracleAnswer_NumericBarcode(t *testing.T) {
	got, err := DecodeOracleAnswer(`{"barcode": 91234567890123456789012345678901234567890123}`)
	require.NoError(t, err)
	assert.Equal(t, "91234567890123456789012345678901234567890123", got.Barcode)
}

func TestDecodeOracleAnswer_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		err  string
	}{
		{"prose only", "No encontré datos en la factura.", "no JSON object"},
		{"broken json", `{"amount": }`, "unmarshal answer"},
		{"wrong type", `{"amount": {"value": 10}}`, "does not match schema"},
		{"leading zeros", `{"barcode": 0123}`, "unmarshal answer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOracleAnswer(tt.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestOracleChain_FallsThrough(t *testing.T) {
	groq := &fakeLLM{name: "groq", err: errors.New("429 too many requests")}
	bad := &fakeLLM{name: "gemini-flash", answer: `{"amount": [1]}`}
	gemini := &fakeLLM{name: "gemini", answer: `{"amount": 980.5, "provider": "SCPL"}`}

	fields, backend, err := NewOracleChain(groq, bad, gemini).Extract(context.Background(), "Cooperativa SCPL")
	require.NoError(t, err)

	assert.Equal(t, "gemini", backend)
	assert.Equal(t, "SCPL", fields.Provider)
	assert.InDelta(t, 980.5, *fields.Amount, 0.001)
	assert.Equal(t, 1, groq.calls)
	assert.Equal(t, 1, bad.calls)
	assert.Contains(t, gemini.prompt, "Cooperativa SCPL")
}

func TestOracleChain_FirstAnswerWins(t *testing.T) {
	groq := &fakeLLM{name: "groq", answer: `{"provider": "Edenor"}`}
	gemini := &fakeLLM{name: "gemini", answer: `{"provider": "Edesur"}`}

	fields, backend, err := NewOracleChain(groq, gemini).Extract(context.Background(), "texto")
	require.NoError(t, err)

	assert.Equal(t, "groq", backend)
	assert.Equal(t, "Edenor", fields.Provider)
	assert.Zero(t, gemini.calls)
}

func TestOracleChain_AllFail(t *testing.T) {
	groq := &fakeLLM{name: "groq", err: errors.New("boom")}
	gemini := &fakeLLM{name: "gemini", answer: "sin datos"}

	_, _, err := NewOracleChain(groq, gemini).Extract(context.Background(), "texto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "groq: boom")
	assert.Contains(t, err.Error(), "gemini: answer contains no JSON object")
}

func TestOracleChain_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	groq := &fakeLLM{name: "groq", err: context.Canceled}
	gemini := &fakeLLM{name: "gemini", answer: `{"provider": "Edesur"}`}

	_, _, err := NewOracleChain(groq, gemini).Extract(ctx, "texto")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, gemini.calls)
}

func TestOracleChain_Disabled(t *testing.T) {
	_, _, err := NewOracleChain().Extract(context.Background(), "texto")
	assert.ErrorIs(t, err, dto.ErrOracleDisabled)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "Cód", truncateRunes("Código", 3))
	assert.Equal(t, "abc", truncateRunes("abc", 10))
}

func ptr[T any](v T) *T { return &v }
