package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Receipt is one payroll period. Amounts come from the server as formatted
// strings ("$12,345.67") and are decoded with ParseCurrency. NetPay is
// recorded as reported; it is not checked against the other amounts.
type Receipt struct {
	EmployeeID  int     `json:"empleado"`
	Period      int     `json:"periodo"`
	PaymentDate string  `json:"fechaPago"`
	Earnings    float64 `json:"percepciones"`
	Benefits    float64 `json:"prestaciones"`
	Deductions  float64 `json:"deducciones"`
	NetPay      float64 `json:"neto"`
}

type receiptWire struct {
	EmployeeID  int    `json:"empleado"`
	Period      int    `json:"periodo"`
	PaymentDate string `json:"fechaPago"`
	Earnings    string `json:"percepciones"`
	Benefits    string `json:"prestaciones"`
	Deductions  string `json:"deducciones"`
	NetPay      string `json:"neto"`
}

func (r *Receipt) UnmarshalJSON(b []byte) error {
	var w receiptWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = Receipt{
		EmployeeID:  w.EmployeeID,
		Period:      w.Period,
		PaymentDate: w.PaymentDate,
		Earnings:    ParseCurrency(w.Earnings),
		Benefits:    ParseCurrency(w.Benefits),
		Deductions:  ParseCurrency(w.Deductions),
		NetPay:      ParseCurrency(w.NetPay),
	}
	return nil
}

var currencyNoise = regexp.MustCompile(`[$,\s]`)

// ParseCurrency strips currency symbols, thousands separators and whitespace
// and parses what is left. Anything unparsable is 0.
func ParseCurrency(s string) float64 {
	v, err := strconv.ParseFloat(currencyNoise.ReplaceAllString(s, ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// PeriodLabel renders the fortnight number, e.g. 202503 -> "Period 03".
func (r Receipt) PeriodLabel() string {
	p := strconv.Itoa(r.Period)
	if len(p) < 6 {
		return fmt.Sprintf("Period: %d", r.Period)
	}
	return "Period " + p[len(p)-2:]
}

// Year is the first four digits of the period.
func (r Receipt) Year() string {
	p := strconv.Itoa(r.Period)
	if len(p) < 4 {
		return ""
	}
	return p[:4]
}

// PaidIn reports whether the payment date mentions year.
func (r Receipt) PaidIn(year string) bool {
	return strings.Contains(r.PaymentDate, year)
}

// Target returns the deep-link target that opens this receipt's PDF.
func (r Receipt) Target(receiptType int) Target {
	return Target{EmployeeID: r.EmployeeID, Period: r.Period, Type: receiptType}
}
