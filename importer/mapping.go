package importer

import (
	"fmt"
	"strings"

	"github.com/darnellt0/em-crm-core/core"
)

// Contact fields a CSV column can map to.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldPersona   = "persona"
	FieldStage     = "stage"
	FieldSource    = "source"
	FieldTags      = "tags"
)

var knownFields = map[string]bool{
	FieldFirstName: true,
	FieldLastName:  true,
	FieldEmail:     true,
	FieldPhone:     true,
	FieldPersona:   true,
	FieldStage:     true,
	FieldSource:    true,
	FieldTags:      true,
	core.FieldSkip: true,
}

// AutoMapColumns guesses a column mapping from header names. Each header is
// lower-cased with underscores, spaces and dashes removed, then matched
// against ordered substring rules; the first rule wins and unmatched
// columns map to skip. The result is a starting point — callers override
// it before execution.
func AutoMapColumns(headers []string) map[string]string {
	mapping := make(map[string]string, len(headers))
	for _, header := range headers {
		lower := strings.ToLower(header)
		lower = strings.NewReplacer("_", "", " ", "", "-", "").Replace(lower)

		switch {
		case strings.Contains(lower, "first") && strings.Contains(lower, "name"):
			mapping[header] = FieldFirstName
		case strings.Contains(lower, "last") && strings.Contains(lower, "name"):
			mapping[header] = FieldLastName
		case strings.Contains(lower, "email"):
			mapping[header] = FieldEmail
		case strings.Contains(lower, "phone"), strings.Contains(lower, "mobile"):
			mapping[header] = FieldPhone
		case strings.Contains(lower, "persona"), strings.Contains(lower, "type"):
			mapping[header] = FieldPersona
		case strings.Contains(lower, "stage"), strings.Contains(lower, "lifecycle"):
			mapping[header] = FieldStage
		case strings.Contains(lower, "source"), strings.Contains(lower, "origin"):
			mapping[header] = FieldSource
		case strings.Contains(lower, "tag"):
			mapping[header] = FieldTags
		default:
			mapping[header] = core.FieldSkip
		}
	}
	return mapping
}

// ValidateMapping checks that every mapping target is a known contact
// field or skip.
func ValidateMapping(mapping map[string]string) error {
	if len(mapping) == 0 {
		return ErrMappingNotSet
	}
	for column, field := range mapping {
		if !knownFields[field] {
			return fmt.Errorf("%w: column %q maps to unknown field %q", ErrInvalidMapping, column, field)
		}
	}
	return nil
}

// ApplyMapping projects a raw CSV row onto contact fields. Columns mapped
// to skip and columns absent from the row are left out.
func ApplyMapping(raw map[string]string, mapping map[string]string) map[string]string {
	normalized := make(map[string]string)
	for column, field := range mapping {
		if field == core.FieldSkip {
			continue
		}
		value, ok := raw[column]
		if !ok {
			continue
		}
		normalized[field] = strings.TrimSpace(value)
	}
	return normalized
}

// SplitTags splits a tag cell on commas and semicolons, trimming
// whitespace and dropping empties.
func SplitTags(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
