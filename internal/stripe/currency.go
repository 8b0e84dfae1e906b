package stripe

// Currency is the closed set of lowercase ISO-4217 codes the platform
// accepts from the provider. Payment intents are the exception: their
// currency stays a free-form string, see PaymentIntent.
type Currency string

const (
	CurrencyEUR Currency = "eur"
	CurrencyUSD Currency = "usd"
	CurrencyGBP Currency = "gbp"
	CurrencyCHF Currency = "chf"
	CurrencyCAD Currency = "cad"
	CurrencyAUD Currency = "aud"
	CurrencyJPY Currency = "jpy"
	CurrencySEK Currency = "sek"
	CurrencyNOK Currency = "nok"
	CurrencyDKK Currency = "dkk"
	CurrencyPLN Currency = "pln"
	CurrencyCZK Currency = "czk"
)

var supportedCurrencies = map[Currency]struct{}{
	CurrencyEUR: {},
	CurrencyUSD: {},
	CurrencyGBP: {},
	CurrencyCHF: {},
	CurrencyCAD: {},
	CurrencyAUD: {},
	CurrencyJPY: {},
	CurrencySEK: {},
	CurrencyNOK: {},
	CurrencyDKK: {},
	CurrencyPLN: {},
	CurrencyCZK: {},
}

func (c Currency) Supported() bool {
	_, ok := supportedCurrencies[c]
	return ok
}

func (c Currency) String() string {
	return string(c)
}
