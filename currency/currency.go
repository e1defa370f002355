package currency

// Currency describes one ISO 4217 currency.
type Currency struct {
	Code     string `json:"code"`     // e.g. "USD"
	Symbol   string `json:"symbol"`   // e.g. "$"
	Name     string `json:"name"`     // e.g. "US Dollar"
	Decimals int    `json:"decimals"` // minor-unit digits: 0, 1, 2 or 3
}

// Currencies a user can pick for a group or an expense. Codes not listed
// here are still accepted and treated as two-decimal currencies.
var table = map[string]Currency{
	"USD": {"USD", "$", "US Dollar", 2},
	"EUR": {"EUR", "€", "Euro", 2},
	"GBP": {"GBP", "£", "British Pound", 2},
	"INR": {"INR", "₹", "Indian Rupee", 2},
	"AUD": {"AUD", "A$", "Australian Dollar", 2},
	"CAD": {"CAD", "C$", "Canadian Dollar", 2},
	"CHF": {"CHF", "Fr", "Swiss Franc", 2},
	"CNY": {"CNY", "¥", "Chinese Yuan", 2},
	"SGD": {"SGD", "S$", "Singapore Dollar", 2},
	"AED": {"AED", "د.إ", "UAE Dirham", 2},
	"BRL": {"BRL", "R$", "Brazilian Real", 2},
	"MXN": {"MXN", "Mex$", "Mexican Peso", 2},
	"THB": {"THB", "฿", "Thai Baht", 2},

	// zero-decimal currencies
	"JPY": {"JPY", "¥", "Japanese Yen", 0},
	"KRW": {"KRW", "₩", "South Korean Won", 0},
	"VND": {"VND", "₫", "Vietnamese Dong", 0},
	"CLP": {"CLP", "CLP$", "Chilean Peso", 0},
	"ISK": {"ISK", "kr", "Icelandic Krona", 0},

	// one-decimal
	"MGA": {"MGA", "Ar", "Malagasy Ariary", 1},
	"MRU": {"MRU", "UM", "Mauritanian Ouguiya", 1},

	// three-decimal currencies
	"BHD": {"BHD", ".د.ب", "Bahraini Dinar", 3},
	"KWD": {"KWD", "د.ك", "Kuwaiti Dinar", 3},
	"OMR": {"OMR", "ر.ع.", "Omani Rial", 3},
	"JOD": {"JOD", "د.ا", "Jordanian Dinar", 3},
	"TND": {"TND", "د.ت", "Tunisian Dinar", 3},
	"IQD": {"IQD", "ع.د", "Iraqi Dinar", 3},
	"LYD": {"LYD", "ل.د", "Libyan Dinar", 3},
}

// DefaultCode is used when a user or expense doesn't specify a currency.
const DefaultCode = "INR"

// Lookup returns the currency for a code, and whether it is a known code.
func Lookup(code string) (Currency, bool) {
	c, ok := table[code]
	return c, ok
}

// Decimals returns the minor-unit digit count for an ISO code.
// Unknown codes fall back to 2, the most common minor unit.
func Decimals(code string) int {
	if c, ok := table[code]; ok {
		return c.Decimals
	}
	return 2
}

// IsValid reports whether the code is in the supported table.
func IsValid(code string) bool {
	_, ok := table[code]
	return ok
}
