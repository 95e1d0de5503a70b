package view

import (
	"fmt"
	"html/template"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Assets resolves backend upload paths to browser URLs. The results come
// from our own backend, so templates trust them, data URIs included.
type Assets interface {
	AssetURL(p string) string
	ProductImageURL(p string) string
}

func Funcs(assets Assets) template.FuncMap {
	return template.FuncMap{
		"money":      Money,
		"moneyNull":  MoneyNull,
		"weight":     Weight,
		"weightNull": WeightNull,
		"dateBE":     DateBE,
		"prodCode":   ProdCode,
		"asset":      func(p string) template.URL { return template.URL(assets.AssetURL(p)) },
		"prodImg":    func(p string) template.URL { return template.URL(assets.ProductImageURL(p)) },
		"photoSrc":   PhotoSrc,
		"nav":        Nav,
		"withQuery":  WithQuery,
		"without":    Without,
		"dict":       Dict,
		"payLabel":   PaymentLabel,
		"lower":      strings.ToLower,
	}
}

// Money formats an amount as 1,234.50.
func Money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

func MoneyNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return Money(d.Decimal)
}

// Weight prints kilograms without trailing zeros beyond what was weighed.
func Weight(d decimal.Decimal) string {
	return d.Round(3).String()
}

func WeightNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return Weight(d.Decimal)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// DateBE shows a date in the Buddhist era, dd/mm/yyyy. Unparsable values
// are returned unchanged and an empty value prints "-".
func DateBE(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fmt.Sprintf("%02d/%02d/%d", t.Day(), int(t.Month()), t.Year()+543)
		}
	}
	return s
}

// ProdCode is the short product code printed on lists, e.g. #007.
func ProdCode(id uint) string {
	return fmt.Sprintf("#%03d", id)
}

// PhotoSrc turns raw base64 from the capture endpoints into an img src.
func PhotoSrc(b64 string) template.URL {
	b64 = strings.TrimSpace(b64)
	if b64 == "" || strings.HasPrefix(b64, "data:") {
		return template.URL(b64)
	}
	return template.URL("data:image/jpeg;base64," + b64)
}

// modalKeys each open one modal. Only one is open at a time.
var modalKeys = []string{"modal", "add", "edit", "delete", "pay", "sell", "customer", "images"}

// WithQuery copies the current query string with key set to value. An
// empty value removes the key. The page is kept, so opening a modal leaves
// the list where it was; any other open modal and its error are closed.
func WithQuery(q url.Values, key string, value any) template.URL {
	out := url.Values{}
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	v := fmt.Sprint(value)
	if v == "" || (v == "0" && key != "page") {
		out.Del(key)
	} else {
		out.Set(key, v)
		if slices.Contains(modalKeys, key) {
			for _, k := range modalKeys {
				if k != key {
					out.Del(k)
				}
			}
			out.Del("error")
		}
	}
	enc := out.Encode()
	if enc == "" {
		return "?"
	}
	return template.URL("?" + enc)
}

// Without copies the current query string minus keys, keeping the page.
func Without(q url.Values, keys ...string) template.URL {
	out := url.Values{}
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	for _, k := range keys {
		out.Del(k)
	}
	return template.URL("?" + out.Encode())
}

// Dict builds a map for passing several values into a partial.
func Dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict needs key/value pairs")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

func PaymentLabel(method string) string {
	switch strings.ToLower(method) {
	case "cash":
		return "Cash"
	case "transfer":
		return "Transfer"
	case "":
		return "-"
	}
	return method
}
