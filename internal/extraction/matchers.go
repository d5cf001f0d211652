package extraction

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ridwanfathin/invoice-extractor-service/internal/domain"
)

// Matcher is an independent rule that maps document text to at most one value
// for a single field. Matchers never see each other's results.
type Matcher struct {
	Field domain.Field
	Match func(text string) (string, bool)
}

// PatternMatcher builds a matcher from an ordered list of patterns. The first
// pattern that matches wins, and within a pattern the leftmost match in the
// text wins. The value is the pattern's first capture group.
func PatternMatcher(field domain.Field, patterns ...*regexp.Regexp) Matcher {
	return Matcher{
		Field: field,
		Match: func(text string) (string, bool) {
			for _, re := range patterns {
				m := re.FindStringSubmatch(text)
				if len(m) > 1 && m[1] != "" {
					return m[1], true
				}
			}
			return "", false
		},
	}
}

// ws matches any run of whitespace, including no-break and other Unicode
// spaces that PDF text layers put between a label and its value.
const ws = `[\s\p{Zs}\x{FEFF}]*`

// dateToken is shared by the date and due date rules: groups of 1-4, 1-2 and
// 2-4 digits separated by '-', '/' or '.'. No calendar validation.
const dateToken = `(\d{1,4}[-/.]\d{1,2}[-/.]\d{2,4})`

var (
	invoiceNumberPattern = regexp.MustCompile(
		`(?i)(?:invoice` + ws + `(?:no\.?|number|#)|inv` + ws + `(?:no\.?|#))` + ws + `[:.]?` + ws + `([a-zA-Z0-9-]{3,})`)

	datePattern = regexp.MustCompile(`(?i)(?:date|dated)` + ws + `[:.]?` + ws + dateToken)

	dueDatePattern = regexp.MustCompile(`(?i)due` + ws + `date` + ws + `[:.]?` + ws + dateToken)

	totalPattern = regexp.MustCompile(
		`(?i)(?:total|grand` + ws + `total|amount` + ws + `due|balance` + ws + `due)` + ws + `[:.]?` + ws +
			`(?:[$€£¥])?` + ws + `([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
)

// currencyRule maps the presence of any marker to a currency code
type currencyRule struct {
	code    string
	markers []string
}

// Checked in order; the first rule with a marker present wins.
var currencyRules = []currencyRule{
	{code: "USD", markers: []string{"$", "USD"}},
	{code: "EUR", markers: []string{"€", "EUR"}},
	{code: "GBP", markers: []string{"£", "GBP"}},
}

const maxVendorLength = 50

// A vendor candidate line must not match any of these
var vendorExclusions = []*regexp.Regexp{
	regexp.MustCompile(`(?i)invoice`),
	regexp.MustCompile(`(?i)date`),
	regexp.MustCompile(`(?i)bill` + ws + `to`),
	regexp.MustCompile(`(?i)total|amount` + ws + `due|balance` + ws + `due`),
}

// InvoiceNumberMatcher finds the value after an invoice number label
func InvoiceNumberMatcher() Matcher {
	return PatternMatcher(domain.FieldInvoiceNumber, invoiceNumberPattern)
}

// DateMatcher finds the first labelled date token
func DateMatcher() Matcher {
	return PatternMatcher(domain.FieldDate, datePattern)
}

// DueDateMatcher finds the first "due date" token, independently of DateMatcher
func DueDateMatcher() Matcher {
	return PatternMatcher(domain.FieldDueDate, dueDatePattern)
}

// TotalMatcher captures the numeric part of the first total-like amount.
// A leading currency symbol is consumed but not captured.
func TotalMatcher() Matcher {
	return PatternMatcher(domain.FieldTotal, totalPattern)
}

// CurrencyMatcher scans for currency symbols or codes anywhere in the text
func CurrencyMatcher() Matcher {
	return Matcher{
		Field: domain.FieldCurrency,
		Match: matchCurrency,
	}
}

// VendorMatcher picks the first line that looks like a company name
func VendorMatcher() Matcher {
	return Matcher{
		Field: domain.FieldVendor,
		Match: matchVendor,
	}
}

func matchCurrency(text string) (string, bool) {
	for _, rule := range currencyRules {
		for _, marker := range rule.markers {
			if strings.Contains(text, marker) {
				return rule.code, true
			}
		}
	}
	return "", false
}

func matchVendor(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimFunc(line, isSpace)
		if isVendorCandidate(line) {
			return line, true
		}
	}
	return "", false
}

func isVendorCandidate(line string) bool {
	if line == "" || utf8.RuneCountInString(line) >= maxVendorLength {
		return false
	}
	for _, re := range vendorExclusions {
		if re.MatchString(line) {
			return false
		}
	}
	// a name carries at least one capital letter; all-lowercase lines are prose
	return strings.IndexFunc(line, unicode.IsUpper) >= 0
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// DefaultMatchers returns the standard rule set, one matcher per field
func DefaultMatchers() []Matcher {
	return []Matcher{
		InvoiceNumberMatcher(),
		DateMatcher(),
		DueDateMatcher(),
		TotalMatcher(),
		CurrencyMatcher(),
		VendorMatcher(),
	}
}
