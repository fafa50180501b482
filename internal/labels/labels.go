package labels

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/Simplici0/gr24/internal/pricing"
)

// Language selects one of the two label sets.
type Language string

const (
	German  Language = "de"
	English Language = "en"
)

// Default is the language a new sheet starts in.
const Default = German

// ErrUnsupportedLanguage is returned for tags outside German and English.
var ErrUnsupportedLanguage = errors.New("unsupported language")

var supported = []language.Tag{language.German, language.English}

var matcher = language.NewMatcher(supported)

// ParseLanguage accepts a BCP 47 tag such as "de", "DE" or "en-GB".
func ParseLanguage(raw string) (Language, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty tag", ErrUnsupportedLanguage)
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, raw)
	}
	base, _ := tag.Base()
	switch base.String() {
	case string(German):
		return German, nil
	case string(English):
		return English, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, raw)
}

// Normalize returns lang if supported, otherwise Default.
func Normalize(raw string) Language {
	lang, err := ParseLanguage(raw)
	if err != nil {
		return Default
	}
	return lang
}

// Negotiate picks the best label set for an Accept-Language header.
func Negotiate(acceptLanguage string) Language {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	if supported[idx] == language.English {
		return English
	}
	return German
}

// Other returns the language the toggle switches to.
func (l Language) Other() Language {
	if l == English {
		return German
	}
	return English
}

// Upper is the language code as shown on the toggle and in export file names.
func (l Language) Upper() string { return strings.ToUpper(string(l)) }

var english = [pricing.FieldCount]string{
	"Quantity",
	"Purchase Price (€)",
	"Shipping Costs (€)",
	"Packaging Costs (€)",
	"Margin (%)",
	"Amazon Fees (%)",
	"eBay Fees (%)",
	"Additional Costs / Advertising Costs (%)",
	"VAT (%)",
	"Profit (€)",
	"Total Tax (€)",
	"Total Costs (€)",
	"Total Amazon Fees (€)",
	"Total eBay Fees (€)",
	"Total Additional Costs / Advertising Costs (€)",
	"Selling Price (€)",
}

var german = [pricing.FieldCount]string{
	"Menge",
	"Kaufpreis",
	"Versandkosten",
	"Verpackungskosten",
	"Marge (%)",
	"Amazon-Gebühren (%)",
	"eBay-Gebühren (%)",
	"Zusätzliche Kosten / Werbekosten (%)",
	"MwSt (%)",
	"Profit (€)",
	"Gesamtsteuer (€)",
	"Gesamtkosten (€)",
	"Gesamte Amazon-Gebühren (€)",
	"Gesamte eBay-Gebühren (€)",
	"Gesamte Zusatzkosten / Werbekosten (€)",
	"Verkaufspreis (€)",
}

// Multi-line headers for narrow table columns.
var englishWrapped = [pricing.FieldCount]string{
	"Quantity",
	"Purchase\nPrice (€)",
	"Shipping\nCosts (€)",
	"Packaging\nCosts (€)",
	"Margin (%)",
	"Amazon\nFees (%)",
	"eBay\nFees (%)",
	"Additional Costs\n/\nAdvertising Costs (%)",
	"VAT (%)",
	"Profit (€)",
	"Total\nTax (€)",
	"Total\nCosts (€)",
	"Total Amazon\nFees (€)",
	"Total eBay\nFees (€)",
	"Total Additional Costs\n/\nAdvertising Costs (€)",
	"Selling\nPrice (€)",
}

var germanWrapped = [pricing.FieldCount]string{
	"Menge",
	"Kaufpreis",
	"Versand-\nkosten",
	"Verpackungs-\nkosten",
	"Marge (%)",
	"Amazon-\nGebühren (%)",
	"eBay-\nGebühren (%)",
	"Zusätzliche Kosten\n/\nWerbekosten (%)",
	"MwSt (%)",
	"Profit (€)",
	"Gesamt-\nsteuer (€)",
	"Gesamt-\nkosten (€)",
	"Gesamte Amazon-\nGebühren (€)",
	"Gesamte eBay-\nGebühren (€)",
	"Gesamte Zusatzkosten\n/\nWerbekosten (€)",
	"Verkaufs-\npreis (€)",
}

// Headers returns a copy of the sixteen column labels of lang in field order.
func Headers(lang Language) []string {
	if lang == English {
		return clone(english)
	}
	return clone(german)
}

// WrappedHeaders returns a copy of the multi-line column labels of lang.
func WrappedHeaders(lang Language) []string {
	if lang == English {
		return clone(englishWrapped)
	}
	return clone(germanWrapped)
}

func clone(set [pricing.FieldCount]string) []string {
	out := make([]string, len(set))
	copy(out, set[:])
	return out
}

func plain(lang Language) *[pricing.FieldCount]string {
	if lang == English {
		return &english
	}
	return &german
}

// Label returns the label of a single field.
func Label(lang Language, f pricing.Field) string {
	if f < 0 || int(f) >= pricing.FieldCount {
		return f.Key()
	}
	return plain(lang)[f]
}

// Translate maps a label of one set to its counterpart in the other by position.
func Translate(label string, from, to Language) (string, bool) {
	for i, l := range plain(from) {
		if l == label {
			return plain(to)[i], true
		}
	}
	return "", false
}

// FieldOf returns the field a label names in lang.
func FieldOf(lang Language, label string) (pricing.Field, bool) {
	for i, l := range plain(lang) {
		if l == label {
			return pricing.Field(i), true
		}
	}
	return 0, false
}
