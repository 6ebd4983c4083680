package invoice

// ServiceType tags the kind of utility a provider bills for
type ServiceType string

const (
	ServiceElectricity ServiceType = "electricity"
	ServiceGas         ServiceType = "gas"
	ServiceWater       ServiceType = "water"
	ServiceTelecom     ServiceType = "telecom"
	ServiceInternet    ServiceType = "internet"
	ServiceCable       ServiceType = "cable"
	ServiceInsurance   ServiceType = "insurance"
	ServiceHealth      ServiceType = "health"
	ServiceGeneric     ServiceType = "service"
)

// DigitWindow addresses a substring of a barcode by offset and length
type DigitWindow struct {
	Offset int `yaml:"offset" json:"offset"`
	Length int `yaml:"length" json:"length"`
}

// ProviderRecord is one entry of the provider table
type ProviderRecord struct {
	ID       string      `yaml:"id" json:"id"`
	Name     string      `yaml:"name" json:"name"`
	Patterns []string    `yaml:"patterns" json:"patterns"`
	Type     ServiceType `yaml:"type" json:"type"`

	// PaymentKeywords add weight to barcode candidates when this provider is detected
	PaymentKeywords []string `yaml:"payment_keywords,omitempty" json:"paymentKeywords,omitempty"`
	// AmountWindow is where this provider encodes the amount inside its barcode, if known
	AmountWindow *DigitWindow `yaml:"amount_window,omitempty" json:"amountWindow,omitempty"`
}

// Keyword is a context phrase with a score weight. A trailing '*' matches
// the phrase as a word prefix ("bonificaci*").
type Keyword struct {
	Phrase string
	Weight int
}

// DateRule assigns a contextual weight to a due-date candidate. Rules are
// evaluated in order and the last matching rule decides the weight.
type DateRule struct {
	Name    string
	Phrases []string
	Weight  int
}

// Rules is the read-only configuration shared by every parse. Build it once
// (DefaultRules or LoadRulesFile) and never mutate it afterwards.
type Rules struct {
	Providers []ProviderRecord

	MinAmount             float64
	MaxAmount             float64
	AmountThreshold       int
	AmountPositive        []Keyword
	AmountNegative        []Keyword
	AmountRejectMarkers   []string
	TypicalAmountLow      float64
	TypicalAmountHigh     float64
	TypicalAmountBonus    int
	LatterHalfBonus       int
	RoundAmountCeiling    float64
	RoundAmountPenalty    int
	LargestFallbackBonus  int
	FallbackConfidenceCap int

	DateThreshold      int
	DateRules          []DateRule
	DateFirstHalfBonus int

	NameBlacklist []string

	BarcodeThreshold      int
	BarcodePositive       []Keyword
	BarcodeNegative       []Keyword
	BarcodePaymentSignals []string
	BarcodeAmountWindows  []DigitWindow

	AmountMatchTolerance float64
	CrossValidationBonus int

	MaxAlternatives int
}

// DefaultProviders returns the provider table in match order.
// Order matters: the first provider with a matching pattern wins, so more
// specific companies come before ones sharing generic words. Telecom is
// listed before Personal on purpose; "personal" is a common word and only
// decides when nothing earlier matched.
func DefaultProviders() []ProviderRecord {
	return []ProviderRecord{
		{ID: "edenor", Name: "Edenor", Patterns: []string{"edenor", "empresa distribuidora norte"}, Type: ServiceElectricity},
		{ID: "edesur", Name: "Edesur", Patterns: []string{"edesur", "empresa distribuidora sur"}, Type: ServiceElectricity},
		{ID: "camuzzi", Name: "Camuzzi", Patterns: []string{"camuzzi", "gas pampeana", "gas del sur"}, Type: ServiceGas,
			PaymentKeywords: []string{"hasta cuando puedo pagar"}},
		{ID: "metrogas", Name: "Metrogas", Patterns: []string{"metrogas"}, Type: ServiceGas},
		{ID: "naturgy", Name: "Naturgy", Patterns: []string{"naturgy", "gas natural ban"}, Type: ServiceGas},
		{ID: "scpl", Name: "SCPL", Patterns: []string{"scpl", "sociedad cooperativa popular limitada"}, Type: ServiceGeneric},
		{ID: "aysa", Name: "AySA", Patterns: []string{"aysa", "agua y saneamientos argentinos"}, Type: ServiceWater},
		{ID: "telecom", Name: "Telecom", Patterns: []string{"telecom", "flow"}, Type: ServiceTelecom},
		{ID: "movistar", Name: "Movistar", Patterns: []string{"movistar", "telefonica"}, Type: ServiceTelecom},
		{ID: "claro", Name: "Claro", Patterns: []string{"claro", "amx argentina"}, Type: ServiceTelecom},
		{ID: "personal", Name: "Personal", Patterns: []string{"personal"}, Type: ServiceTelecom},
		{ID: "fibertel", Name: "Fibertel", Patterns: []string{"fibertel", "cablevision"}, Type: ServiceInternet},
		{ID: "telecentro", Name: "Telecentro", Patterns: []string{"telecentro"}, Type: ServiceInternet},
		{ID: "directv", Name: "DirecTV", Patterns: []string{"directv"}, Type: ServiceCable},
		{ID: "osde", Name: "OSDE", Patterns: []string{"osde"}, Type: ServiceHealth},
		{ID: "swiss_medical", Name: "Swiss Medical", Patterns: []string{"swiss medical"}, Type: ServiceHealth},
		{ID: "galeno", Name: "Galeno", Patterns: []string{"galeno"}, Type: ServiceHealth},
		{ID: "sancor", Name: "Sancor Seguros", Patterns: []string{"sancor seguros"}, Type: ServiceInsurance},
		{ID: "federacion_patronal", Name: "Federación Patronal", Patterns: []string{"federacion patronal"}, Type: ServiceInsurance},
	}
}

// DefaultNameBlacklist lists words and phrases that disqualify a customer-name candidate
func DefaultNameBlacklist() []string {
	return []string{
		// providers
		"EDENOR", "EDESUR", "CAMUZZI", "METROGAS", "NATURGY", "AYSA", "TELECOM", "PERSONAL", "FLOW",
		"MOVISTAR", "TELEFONICA", "CLARO", "FIBERTEL", "CABLEVISION", "TELECENTRO", "DIRECTV",
		"OSDE", "SWISS MEDICAL", "GALENO", "SCPL", "SANCOR", "EMPRESA", "DISTRIBUIDORA",
		// legal entities
		"S.A.", "S.A", "SA", "SAU", "S.A.U.", "SRL", "S.R.L.", "SAS", "S.A.S.", "INC", "LTDA",
		"COOPERATIVA", "LIMITADA", "SOCIEDAD", "ANONIMA",
		// invoice jargon
		"CUIT", "CUIL", "DNI", "FACTURA", "LIQUIDACION", "CONSUMO", "TOTAL", "PAGO", "PAGAR",
		"VENCE", "VENCIMIENTO", "CLIENTE", "TITULAR", "USUARIO", "SUMINISTRO", "DIRECCION",
		"DOMICILIO", "ESTADO", "PERIODO", "MES", "ANO", "FECHA", "EMISION", "NUMERO", "NRO",
		"CALLE", "PROVINCIA", "LOCALIDAD", "RESPONSABLE", "INSCRIPTO", "MONOTRIBUTO", "EXENTO",
		"IVA", "CONSUMIDOR FINAL", "SERVICIO", "SERVICIOS", "IMPORTE", "MONTO", "SALDO",
		"CODIGO", "BARRAS", "ORIGINAL", "DUPLICADO", "TARIFA", "MEDIDOR", "LECTURA", "CATEGORIA",
		"RESUMEN", "CUENTA", "DETALLE", "CARGO", "CARGOS", "IMPUESTOS", "RESIDENCIAL",
		"ATENCION", "COMERCIAL", "OFICINA", "HASTA", "PUEDO", "DATOS", "SENOR", "SENORA",
		// places
		"BUENOS AIRES", "CAPITAL FEDERAL", "CIUDAD", "CABA", "ARGENTINA", "PARTIDO", "BARRIO",
		"AV", "AVENIDA", "PISO", "DEPTO", "DPTO",
	}
}

// DefaultRules returns a fresh copy of the built-in tables
func DefaultRules() *Rules {
	return &Rules{
		Providers: DefaultProviders(),

		MinAmount:       10,
		MaxAmount:       1_000_000,
		AmountThreshold: 40,
		AmountPositive: []Keyword{
			{"total a pagar", 100},
			{"importe a pagar", 100},
			{"monto a pagar", 95},
			{"debe abonar", 95},
			{"total factura", 85},
			{"total de la factura", 85},
			{"importe total", 80},
			{"monto total", 80},
			{"total vencimiento", 80},
			{"total liquidacion", 80},
			{"saldo total", 75},
			{"total", 70},
			{"importe", 55},
			{"monto", 50},
			{"pagar", 45},
			{"saldo", 35},
		},
		AmountNegative: []Keyword{
			{"saldo anterior", -90},
			{"periodo anterior", -80},
			{"subtotal", -80},
			{"sub total", -80},
			{"iva", -60},
			{"descuento", -60},
			{"bonificaci*", -50},
			{"percepci*", -50},
			{"impuesto*", -40},
			{"nro de cuenta", -70},
			{"numero de cuenta", -70},
			{"cuenta", -50},
			{"cliente", -40},
			{"kwh", -70},
			{"m3", -70},
			{"consumo", -50},
		},
		AmountRejectMarkers: []string{
			"cuit", "cuil", "dni", "cbu",
			"tel", "telefono", "whatsapp",
			"nro de cuenta", "numero de cuenta", "n° de cuenta", "cuenta n*",
			"nro de cliente", "numero de cliente", "n° de cliente", "cliente n*", "nro cliente",
		},
		TypicalAmountLow:      1_000,
		TypicalAmountHigh:     50_000,
		TypicalAmountBonus:    20,
		LatterHalfBonus:       15,
		RoundAmountCeiling:    5_000,
		RoundAmountPenalty:    20,
		LargestFallbackBonus:  10,
		FallbackConfidenceCap: 50,

		DateThreshold: 40,
		DateRules: []DateRule{
			{Name: "due", Phrases: []string{"vencimiento", "vto", "vence", "vencimiento original"}, Weight: 100},
			{Name: "payable-until", Phrases: []string{"pago hasta", "hasta cuando", "pagar hasta"}, Weight: 150},
			{Name: "issue", Phrases: []string{"emision", "fecha de factura", "emitida"}, Weight: -90},
			{Name: "next", Phrases: []string{"proximo", "prox"}, Weight: 80},
		},
		DateFirstHalfBonus: 10,

		NameBlacklist: DefaultNameBlacklist(),

		BarcodeThreshold: 30,
		BarcodePositive: []Keyword{
			{"codigo de barras", 15},
			{"cod de barras", 15},
			{"interbanking", 15},
			{"pagomiscuentas", 15},
			{"pago mis cuentas", 15},
			{"codigo de pago", 12},
			{"pago electronico", 12},
			{"barras", 10},
			{"pmc", 10},
			{"red link", 10},
			{"link pagos", 10},
			{"pago", 10},
			{"pagar", 10},
			{"codigo", 5},
			{"cod", 5},
		},
		BarcodeNegative: []Keyword{
			{"cuit", -30},
			{"cuil", -30},
			{"telefono", -30},
			{"tel", -30},
			{"cuenta", -20},
			{"cliente", -20},
			{"cbu", -10},
		},
		BarcodePaymentSignals: []string{
			"codigo de barras", "barras", "codigo de pago", "pago electronico",
			"pagomiscuentas", "pago mis cuentas", "interbanking", "pmc", "link",
		},
		BarcodeAmountWindows: []DigitWindow{
			{Offset: 19, Length: 8},
			{Offset: 15, Length: 10},
		},

		AmountMatchTolerance: 0.01,
		CrossValidationBonus: 10,

		MaxAlternatives: 5,
	}
}
