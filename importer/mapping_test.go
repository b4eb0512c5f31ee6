package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/darnellt0/em-crm-core/core"
)

func TestAutoMapColumns(t *testing.T) {
	mapping := AutoMapColumns([]string{
		"First Name", "last_name", "E-Mail", "Mobile Phone",
		"Persona", "Lifecycle Stage", "Lead Source", "Tags", "Notes",
	})

	assert.Equal(t, FieldFirstName, mapping["First Name"])
	assert.Equal(t, FieldLastName, mapping["last_name"])
	assert.Equal(t, FieldEmail, mapping["E-Mail"])
	assert.Equal(t, FieldPhone, mapping["Mobile Phone"])
	assert.Equal(t, FieldPersona, mapping["Persona"])
	assert.Equal(t, FieldStage, mapping["Lifecycle Stage"])
	assert.Equal(t, FieldSource, mapping["Lead Source"])
	assert.Equal(t, FieldTags, mapping["Tags"])
	assert.Equal(t, core.FieldSkip, mapping["Notes"])
}

// "firstname" contains "name", so the combined first+name rule has to win
// before any bare name rule could misfire.
func TestAutoMapColumnsFirstRuleWins(t *testing.T) {
	mapping := AutoMapColumns([]string{"firstname", "lastname"})
	assert.Equal(t, FieldFirstName, mapping["firstname"])
	assert.Equal(t, FieldLastName, mapping["lastname"])
}

func TestValidateMapping(t *testing.T) {
	assert.ErrorIs(t, ValidateMapping(nil), ErrMappingNotSet)
	assert.ErrorIs(t, ValidateMapping(map[string]string{"col": "nickname"}), ErrInvalidMapping)
	assert.NoError(t, ValidateMapping(map[string]string{"col": FieldEmail, "other": core.FieldSkip}))
}

func TestApplyMapping(t *testing.T) {
	raw := map[string]string{
		"Email":  "  jane@x.com ",
		"Notes":  "ignore me",
		"Absent": "",
	}
	mapping := map[string]string{
		"Email":   FieldEmail,
		"Notes":   core.FieldSkip,
		"Missing": FieldPhone,
	}

	normalized := ApplyMapping(raw, mapping)
	assert.Equal(t, "jane@x.com", normalized[FieldEmail])
	_, hasPhone := normalized[FieldPhone]
	assert.False(t, hasPhone, "columns absent from the row must not appear")
	assert.Len(t, normalized, 1)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"vip", "cohort-3", "austin"}, SplitTags("vip, cohort-3; austin"))
	assert.Empty(t, SplitTags("  ;, "))
	assert.Empty(t, SplitTags(""))
}
