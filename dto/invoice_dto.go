package dto

// Field sources reported in ExtractionResult.Sources
const (
	SourceHeuristic = "heuristic"
	SourceOracle    = "oracle"
)

// ProviderInfo identifies the utility company that issued the invoice
type ProviderInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ConfidenceMap holds 0-100 scores per field. Absent fields stay at 0.
type ConfidenceMap struct {
	Amount       int `json:"amount"`
	Date         int `json:"date"`
	Barcode      int `json:"barcode"`
	Provider     int `json:"provider"`
	CustomerName int `json:"customerName"`
}

// Alternatives lists ranked runner-up candidates per field
type Alternatives struct {
	Amounts  []float64 `json:"amounts"`
	Dates    []string  `json:"dates"`
	Barcodes []string  `json:"barcodes"`
}

// FieldSources records which extractor produced each selected field
type FieldSources struct {
	Amount       string `json:"amount,omitempty"`
	DueDate      string `json:"dueDate,omitempty"`
	Barcode      string `json:"barcode,omitempty"`
	Provider     string `json:"provider,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
}

// ExtractionResult is the output of one invoice parse.
// Nil pointers mean the field could not be detected.
type ExtractionResult struct {
	Amount       *float64      `json:"amount"`
	DueDate      *string       `json:"dueDate"`
	Barcode      *string       `json:"barcode"`
	Provider     *ProviderInfo `json:"provider"`
	CustomerName *string       `json:"customerName"`
	Confidence   ConfidenceMap `json:"confidence"`
	Alternatives Alternatives  `json:"alternatives"`
	Debug        []string      `json:"debug"`
	Sources      FieldSources  `json:"sources"`
}

// NewExtractionResult returns an all-null result with non-nil slices so it
// serializes as empty arrays instead of null.
func NewExtractionResult() ExtractionResult {
	return ExtractionResult{
		Alternatives: Alternatives{
			Amounts:  []float64{},
			Dates:    []string{},
			Barcodes: []string{},
		},
		Debug: []string{},
	}
}

// OracleFields is the answer of an external (LLM) extractor.
// Empty strings and a nil Amount mean "the oracle did not answer this field".
type OracleFields struct {
	Provider     string   `json:"provider"`
	CustomerName string   `json:"customerName"`
	Amount       *float64 `json:"amount"`
	DueDate      string   `json:"dueDate"`
	Barcode      string   `json:"barcode"`
}

// IsEmpty reports whether the oracle answered nothing usable
func (o *OracleFields) IsEmpty() bool {
	return o == nil || (o.Provider == "" && o.CustomerName == "" && o.Amount == nil &&
		o.DueDate == "" && o.Barcode == "")
}
