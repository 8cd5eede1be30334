// Package operators maps National Rail train operating company codes to
// their names.
package operators

import "strings"

// Operator is a train operating company
type Operator struct {
	Code string
	Name string
}

var operators = map[string]Operator{
	"AW": {"AW", "Transport for Wales"},
	"CC": {"CC", "c2c"},
	"CH": {"CH", "Chiltern Railways"},
	"CS": {"CS", "Caledonian Sleeper"},
	"EM": {"EM", "East Midlands Railway"},
	"ES": {"ES", "Eurostar"},
	"GC": {"GC", "Grand Central"},
	"GN": {"GN", "Great Northern"},
	"GR": {"GR", "London North Eastern Railway"},
	"GW": {"GW", "Great Western Railway"},
	"GX": {"GX", "Gatwick Express"},
	"HT": {"HT", "Hull Trains"},
	"HX": {"HX", "Heathrow Express"},
	"IL": {"IL", "Island Line"},
	"LD": {"LD", "Lumo"},
	"LE": {"LE", "Greater Anglia"},
	"LM": {"LM", "West Midlands Trains"},
	"LO": {"LO", "London Overground"},
	"LT": {"LT", "London Underground"},
	"ME": {"ME", "Merseyrail"},
	"NT": {"NT", "Northern"},
	"SE": {"SE", "Southeastern"},
	"SN": {"SN", "Southern"},
	"SR": {"SR", "ScotRail"},
	"SW": {"SW", "South Western Railway"},
	"TL": {"TL", "Thameslink"},
	"TP": {"TP", "TransPennine Express"},
	"TW": {"TW", "Tyne & Wear Metro"},
	"VT": {"VT", "Avanti West Coast"},
	"XC": {"XC", "CrossCountry"},
	"XR": {"XR", "Elizabeth line"},
}

// GetOperator returns the operator for a two letter code, or nil if the
// code is unknown. Codes are matched case-insensitively.
func GetOperator(code string) *Operator {
	op, ok := operators[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil
	}
	return &op
}

// Name returns the operator name for code, or "" if it is unknown
func Name(code string) string {
	if op := GetOperator(code); op != nil {
		return op.Name
	}
	return ""
}
