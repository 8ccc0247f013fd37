package domain

import (
	"net/mail"
	"net/url"
	"strings"
	"unicode"

	"api_commerce/internal/apperror"
)

// TaxID is the customer's business key.
type TaxID struct{ value string }

// NewTaxID validates raw as a tax id: 5 to 32 letters, digits or dashes.
func NewTaxID(raw string) (TaxID, error) {
	v := strings.TrimSpace(raw)
	if len(v) < 5 || len(v) > 32 {
		return TaxID{}, apperror.Validation("tax id must be between 5 and 32 characters long")
	}
	for _, r := range v {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' {
			return TaxID{}, apperror.Validation("tax id %q contains invalid characters", v)
		}
	}
	return TaxID{value: v}, nil
}

func (t TaxID) String() string { return t.value }

// Email is a bare e-mail address.
type Email struct{ value string }

func NewEmail(raw string) (Email, error) {
	v := strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return Email{}, apperror.Validation("invalid email format")
	}
	return Email{value: v}, nil
}

func (e Email) String() string { return e.value }

// Phone is a 10 digit phone number.
type Phone struct{ value string }

func NewPhone(raw string) (Phone, error) {
	v := strings.TrimSpace(raw)
	if len(v) != 10 {
		return Phone{}, apperror.Validation("invalid phone number format")
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return Phone{}, apperror.Validation("invalid phone number format")
		}
	}
	return Phone{value: v}, nil
}

func (p Phone) String() string { return p.value }

// URL is an absolute http(s) URL.
type URL struct{ value string }

func NewURL(raw string) (URL, error) {
	v := strings.TrimSpace(raw)
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return URL{}, apperror.Validation("invalid URL format")
	}
	return URL{value: v}, nil
}

func (u URL) String() string { return u.value }

// ValidateSKU checks a product business key.
func ValidateSKU(sku string) error {
	if sku == "" || len(sku) > 64 {
		return apperror.Validation("sku must be between 1 and 64 characters long")
	}
	if strings.IndexFunc(sku, unicode.IsSpace) >= 0 {
		return apperror.Validation("sku %q must not contain whitespace", sku)
	}
	return nil
}

// NormalizeFlags trims labels, drops empty ones and removes duplicates
// keeping the first occurrence.
func NormalizeFlags(flags []string) []string {
	out := make([]string, 0, len(flags))
	seen := make(map[string]struct{}, len(flags))
	for _, f := range flags {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
