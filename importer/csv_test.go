package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	text := "First Name,Last Name,Email\nJane,Doe,jane@x.com\nJohn,,john@x.com\n"

	parsed := ParseCSV(text)
	assert.Equal(t, []string{"First Name", "Last Name", "Email"}, parsed.Headers)
	require.Len(t, parsed.Rows, 2)
	assert.Equal(t, "Jane", parsed.Rows[0]["First Name"])
	assert.Equal(t, "jane@x.com", parsed.Rows[0]["Email"])
	assert.Equal(t, "", parsed.Rows[1]["Last Name"])
}

func TestParseCSVTolerance(t *testing.T) {
	t.Run("blank lines and CRLF dropped", func(t *testing.T) {
		text := "name,email\r\n\r\nJane,jane@x.com\r\n\n   \n"
		parsed := ParseCSV(text)
		require.Len(t, parsed.Rows, 1)
		assert.Equal(t, "jane@x.com", parsed.Rows[0]["email"])
	})

	t.Run("surrounding quotes stripped", func(t *testing.T) {
		text := "\"name\",\"email\"\n\"Jane\",\"jane@x.com\"\n"
		parsed := ParseCSV(text)
		assert.Equal(t, []string{"name", "email"}, parsed.Headers)
		require.Len(t, parsed.Rows, 1)
		assert.Equal(t, "Jane", parsed.Rows[0]["name"])
	})

	t.Run("short row padded with empties", func(t *testing.T) {
		parsed := ParseCSV("a,b,c\n1,2\n")
		require.Len(t, parsed.Rows, 1)
		assert.Equal(t, "", parsed.Rows[0]["c"])
	})

	t.Run("header only yields no rows", func(t *testing.T) {
		parsed := ParseCSV("a,b,c\n")
		assert.Empty(t, parsed.Rows)
	})

	t.Run("empty input", func(t *testing.T) {
		parsed := ParseCSV("")
		assert.Empty(t, parsed.Headers)
		assert.Empty(t, parsed.Rows)
	})
}
