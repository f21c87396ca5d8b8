// Package hero holds the shared vocabulary for hero tokens: the durable
// per-token record, the metadata shape served by the token metadata
// endpoint, and helpers for reading trait attributes.
package hero

import (
	"errors"
	"strconv"
	"strings"
)

// ErrMalformedMetadata indicates the metadata endpoint answered with a
// payload that does not match the documented shape. It is treated as a
// transient condition by callers, since upstream indexers routinely serve
// partial documents while they catch up.
var ErrMalformedMetadata = errors.New("malformed token metadata")

// TraitAttribute is one entry of a token's ordered attribute list. Value
// is kept loosely typed because the upstream endpoint emits both numbers
// and strings for the same trait across tokens.
type TraitAttribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// Number coerces the attribute value into a float64. It accepts JSON
// numbers and numeric strings; everything else reports false.
func (a TraitAttribute) Number() (float64, bool) {
	switch v := a.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Metadata is the descriptive document served for a token.
type Metadata struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Attributes  []TraitAttribute `json:"attributes"`
}

// Trait returns the first attribute whose trait type matches name,
// compared case-insensitively.
func (m Metadata) Trait(name string) (TraitAttribute, bool) {
	for _, attr := range m.Attributes {
		if strings.EqualFold(attr.TraitType, name) {
			return attr, true
		}
	}
	return TraitAttribute{}, false
}

// Record is the durable state kept for a token. Records are created on
// first observation and never deleted. Revealed transitions false to true
// exactly once and never back.
type Record struct {
	TokenID       uint64
	Revealed      bool
	DeathRecorded bool
	Image         string
	Attributes    []TraitAttribute
}
