package currency

import (
	"math"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCode is used whenever a currency code is missing or unrecognized.
const DefaultCode = "USD"

// Currency describes how amounts in one currency are rendered: which symbol
// to use, on which side of the number it goes, how many fraction digits to
// print, and which separators group the integer part and mark the fraction.
type Currency struct {
	Code              string
	Name              string
	Symbol            string
	DecimalDigits     int
	SymbolFirst       bool
	ThousandSeparator string
	DecimalSeparator  string
}

// currencies is the curated metadata table. Codes not listed here are looked
// up in the go-money ISO registry before falling back to the default entry.
var currencies = map[string]Currency{
	"USD": {Code: "USD", Name: "US Dollar", Symbol: "$", DecimalDigits: 2, SymbolFirst: true, ThousandSeparator: ",", DecimalSeparator: "."},
	"EUR": {Code: "EUR", Name: "Euro", Symbol: "€", DecimalDigits: 2, SymbolFirst: false, ThousandSeparator: ".", DecimalSeparator: ","},
	"GBP": {Code: "GBP", Name: "British Pound", Symbol: "£", DecimalDigits: 2, SymbolFirst: true, ThousandSeparator: ",", DecimalSeparator: "."},
	"JPY": {Code: "JPY", Name: "Japanese Yen", Symbol: "¥", DecimalDigits: 0, SymbolFirst: true, ThousandSeparator: ",", DecimalSeparator: "."},
	"PLN": {Code: "PLN", Name: "Polish Złoty", Symbol: "zł", DecimalDigits: 2, SymbolFirst: false, ThousandSeparator: " ", DecimalSeparator: ","},
	"INR": {Code: "INR", Name: "Indian Rupee", Symbol: "₹", DecimalDigits: 2, SymbolFirst: true, ThousandSeparator: ",", DecimalSeparator: "."},
	"CAD": {Code: "CAD", Name: "Canadian Dollar", Symbol: "$", DecimalDigits: 2, SymbolFirst: true, ThousandSeparator: ",", DecimalSeparator: "."},
	"AUD": {Code: "AUD", Name: "Australian Dollar", Symbol: "$", DecimalDigits: 2, SymbolFirst: true, ThousandSeparator: ",", DecimalSeparator: "."},
	"CHF": {Code: "CHF", Name: "Swiss Franc", Symbol: "CHF ", DecimalDigits: 2, SymbolFirst: true, ThousandSeparator: "'", DecimalSeparator: "."},
	"SEK": {Code: "SEK", Name: "Swedish Krona", Symbol: "kr", DecimalDigits: 2, SymbolFirst: false, ThousandSeparator: " ", DecimalSeparator: ","},
	"NOK": {Code: "NOK", Name: "Norwegian Krone", Symbol: "kr", DecimalDigits: 2, SymbolFirst: false, ThousandSeparator: " ", DecimalSeparator: ","},
	"DKK": {Code: "DKK", Name: "Danish Krone", Symbol: "kr", DecimalDigits: 2, SymbolFirst: false, ThousandSeparator: ".", DecimalSeparator: ","},
	"BRL": {Code: "BRL", Name: "Brazilian Real", Symbol: "R$", DecimalDigits: 2, SymbolFirst: true, ThousandSeparator: ".", DecimalSeparator: ","},
	"MXN": {Code: "MXN", Name: "Mexican Peso", Symbol: "$", DecimalDigits: 2, SymbolFirst: true, ThousandSeparator: ",", DecimalSeparator: "."},
	"CNY": {Code: "CNY", Name: "Chinese Yuan", Symbol: "¥", DecimalDigits: 2, SymbolFirst: true, ThousandSeparator: ",", DecimalSeparator: "."},
	"KRW": {Code: "KRW", Name: "South Korean Won", Symbol: "₩", DecimalDigits: 0, SymbolFirst: true, ThousandSeparator: ",", DecimalSeparator: "."},
	"ZAR": {Code: "ZAR", Name: "South African Rand", Symbol: "R", DecimalDigits: 2, SymbolFirst: true, ThousandSeparator: " ", DecimalSeparator: ","},
	"NGN": {Code: "NGN", Name: "Nigerian Naira", Symbol: "₦", DecimalDigits: 2, SymbolFirst: true, ThousandSeparator: ",", DecimalSeparator: "."},
}

// Lookup resolves a currency code to its display metadata. Codes missing from
// the curated table are resolved through the go-money ISO registry; anything
// still unknown gets the default entry, so formatting never fails.
func Lookup(code string) Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return currencies[DefaultCode]
	}
	if c, ok := currencies[code]; ok {
		return c
	}
	if iso := money.GetCurrency(code); iso != nil {
		return Currency{
			Code:              iso.Code,
			Name:              iso.Code,
			Symbol:            iso.Grapheme,
			DecimalDigits:     iso.Fraction,
			SymbolFirst:       strings.HasPrefix(iso.Template, "$"),
			ThousandSeparator: iso.Thousand,
			DecimalSeparator:  iso.Decimal,
		}
	}
	return currencies[DefaultCode]
}

// IsKnown reports whether the code resolves to a real currency rather than
// the default fallback entry.
func IsKnown(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, ok := currencies[code]; ok {
		return true
	}
	return money.GetCurrency(code) != nil
}

// Supported returns the curated currency table sorted by code. This is the
// set offered in account and settings forms; other ISO codes still format
// correctly via the registry fallback.
func Supported() []Currency {
	all := make([]Currency, 0, len(currencies))
	for _, c := range currencies {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return all
}

// Format renders the amount in the currency identified by code.
func Format(amount decimal.Decimal, code string) string {
	return FormatWith(amount, Lookup(code))
}

// FormatFloat renders a float amount, treating NaN and infinities as zero so
// broken upstream values never reach the output.
func FormatFloat(amount float64, code string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return Format(decimal.NewFromFloat(amount), code)
}

// FormatWith renders the amount using the given metadata. The minus sign of a
// negative amount prefixes the fully composed string, so a symbol-first
// currency renders as "-$1,234.50" and not "$-1,234.50".
func FormatWith(amount decimal.Decimal, cur Currency) string {
	negative := amount.IsNegative()
	fixed := amount.Abs().StringFixed(int32(cur.DecimalDigits))

	integer := fixed
	fraction := ""
	if idx := strings.IndexByte(fixed, '.'); idx >= 0 {
		integer = fixed[:idx]
		fraction = fixed[idx+1:]
	}

	number := groupThousands(integer, cur.ThousandSeparator)
	if cur.DecimalDigits > 0 {
		number += cur.DecimalSeparator + fraction
	}

	var out string
	if cur.SymbolFirst {
		out = cur.Symbol + number
	} else {
		out = number + " " + cur.Symbol
	}
	if negative {
		out = "-" + out
	}
	return out
}

// groupThousands inserts the separator every three digits, counting from the
// right. Only the integer part is ever passed in.
func groupThousands(digits string, separator string) string {
	if separator == "" || len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(separator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
