package address

import (
	"strings"

	"github.com/clientes/backend/internal/domain/shared"
)

// PostalCodeLength is the number of digits in a normalized CEP
const PostalCodeLength = 8

// PostalCode is a normalized CEP: exactly eight ASCII digits.
// The zero value is not a valid postal code.
type PostalCode string

// ParsePostalCode strips formatting characters (hyphen, dot, whitespace)
// from raw and validates the result.
// "01001-000", "01001000" and " 01.001-000 " all yield "01001000".
func ParsePostalCode(raw string) (PostalCode, error) {
	var sb strings.Builder
	sb.Grow(PostalCodeLength)

	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '-' || r == '.' || r == ' ' || r == '\t':
			continue
		default:
			return "", shared.ErrInvalidPostalCode
		}
	}

	if sb.Len() != PostalCodeLength {
		return "", shared.ErrInvalidPostalCode
	}
	return PostalCode(sb.String()), nil
}

// MustParsePostalCode parses raw, panics on error
func MustParsePostalCode(raw string) PostalCode {
	pc, err := ParsePostalCode(raw)
	if err != nil {
		panic(err)
	}
	return pc
}

// String returns the normalized digits
func (p PostalCode) String() string {
	return string(p)
}

// Formatted returns the conventional "00000-000" rendering
func (p PostalCode) Formatted() string {
	if len(p) != PostalCodeLength {
		return string(p)
	}
	return string(p[:5]) + "-" + string(p[5:])
}

// IsZero reports whether p is empty
func (p PostalCode) IsZero() bool {
	return p == ""
}
