package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"github.com/Aashish23092/invoice-ocr-ar/dto"
	"github.com/Aashish23092/invoice-ocr-ar/logging"
	"github.com/Aashish23092/invoice-ocr-ar/utils/invoice"
)

// maxOracleInput bounds the invoice text sent to a model, in runes
const maxOracleInput = 12000

const oracleSystemPrompt = `Sos un experto en facturas de servicios de Argentina. Extraé los datos y respondé únicamente con un objeto JSON con estas claves:
- "provider": empresa emisora (Edenor, Camuzzi, SCPL, Telecom, etc.).
- "customerName": nombre del titular del servicio.
- "amount": monto total a pagar como número, sin símbolo de moneda.
- "dueDate": fecha de vencimiento en formato YYYY-MM-DD. En Camuzzi usá la fecha de "¿HASTA CUÁNDO PUEDO PAGAR?".
- "barcode": la secuencia numérica LARGA del código de barras (40 a 60 dígitos), completa y sin espacios.
Usá null para los datos que no encuentres.`

// LLMClient is one JSON-mode chat backend
type LLMClient interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// Oracle extracts invoice fields with an external model. It returns the
// fields and the name of the backend that answered.
type Oracle interface {
	Extract(ctx context.Context, text string) (*dto.OracleFields, string, error)
}

// OracleChain asks each client in order and returns the first answer
// that passes schema validation.
type OracleChain struct {
	clients []LLMClient
	log     zerolog.Logger
}

func NewOracleChain(clients ...LLMClient) *OracleChain {
	return &OracleChain{
		clients: clients,
		log:     logging.Component("oracle"),
	}
}

func (o *OracleChain) Extract(ctx context.Context, text string) (*dto.OracleFields, string, error) {
	if len(o.clients) == 0 {
		return nil, "", dto.ErrOracleDisabled
	}

	prompt := "Texto de la factura:\n" + truncateRunes(text, maxOracleInput)

	var errs []error
	for _, c := range o.clients {
		start := time.Now()
		fields, err := o.ask(ctx, c, prompt)
		if err == nil {
			o.log.Debug().Str("backend", c.Name()).Dur("elapsed", time.Since(start)).Msg("oracle answered")
			return fields, c.Name(), nil
		}

		o.log.Warn().Err(err).Str("backend", c.Name()).Msg("oracle backend failed, trying next")
		errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}

	return nil, "", fmt.Errorf("all oracle backends failed: %w", errors.Join(errs...))
}

func (o *OracleChain) ask(ctx context.Context, c LLMClient, prompt string) (*dto.OracleFields, error) {
	raw, err := c.Complete(ctx, oracleSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return DecodeOracleAnswer(raw)
}

var oracleAnswerSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"provider":     map[string]any{"type": []any{"string", "null"}},
		"customerName": map[string]any{"type": []any{"string", "null"}},
		"amount":       map[string]any{"type": []any{"number", "string", "null"}},
		"dueDate":      map[string]any{"type": []any{"string", "null"}},
		"barcode":      map[string]any{"type": []any{"string", "number", "null"}},
	},
}

var compiledOracleSchema = mustCompileSchema(oracleAnswerSchema)

func mustCompileSchema(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("oracle.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	return compiler.MustCompile("oracle.json")
}

// DecodeOracleAnswer validates a model's JSON answer and converts it to
// OracleFields. Unusable values (unparseable amounts, malformed dates,
// "null" strings) are dropped field by field.
func DecodeOracleAnswer(raw string) (*dto.OracleFields, error) {
	data := extractJSONObject(raw)
	if data == "" {
		return nil, errors.New("answer contains no JSON object")
	}

	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("unmarshal answer: %w", err)
	}
	if err := compiledOracleSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("answer does not match schema: %w", err)
	}

	m := v.(map[string]any)
	fields := &dto.OracleFields{
		Provider:     oracleString(m["provider"]),
		CustomerName: oracleString(m["customerName"]),
		Amount:       oracleAmount(m["amount"]),
		DueDate:      oracleDate(oracleString(m["dueDate"])),
		Barcode:      oracleString(m["barcode"]),
	}
	return fields, nil
}

// extractJSONObject trims code fences and prose around the outermost object
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func oracleString(v any) string {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	}
	switch strings.ToLower(s) {
	case "null", "n/a", "none", "-":
		return ""
	}
	return s
}

// plainDecimal is a bare number with a dot decimal separator. Exactly three
// digits after the dot stay with the locale parser, which reads them as
// thousands ("15.420").
var plainDecimal = regexp.MustCompile(`^\d+(?:\.(?:\d{1,2}|\d{4,}))?$`)

func oracleAmount(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if plainDecimal.MatchString(s) {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return nil
			}
			f = d.InexactFloat64()
		} else {
			f = invoice.ParseLocaleNumber(s)
		}
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return nil
	}
	return &f
}

// oracleDate accepts ISO dates and the DD/MM/YYYY form models sometimes
// return despite the prompt
func oracleDate(s string) string {
	if s == "" {
		return ""
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02")
	}
	for _, layout := range []string{"02/01/2006", "2/1/2006", "02-01-2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
