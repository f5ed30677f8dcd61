package disclosure

import (
	"strings"

	"github.com/araddon/dateparse"
)

// NormalizeDate converts an arbitrary date-like value into the canonical
// YYYY-MM-DD form. Unparseable input yields the empty string, which downstream
// treats as "no date". Only the date portion of the parsed instant is kept; no
// timezone shifting is applied.
func NormalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	t, err := dateparse.ParseAny(value)
	if err != nil {
		return ""
	}

	return t.Format("2006-01-02")
}
