package svg

import (
	"bytes"
	"encoding/xml"
	"strconv"
)

const (
	labelLimit = 12
	agentLimit = 10
)

// Truncate keeps at most n characters of s. It counts runes, so multi-byte
// labels are never split mid-character.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// EscapeXML escapes s for use in XML text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// num formats a coordinate with the fewest digits that round-trip.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
