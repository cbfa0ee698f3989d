// Package jsonx holds lenient JSON field types shared by request decoders.
package jsonx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

var null = []byte("null")

// FlexibleID accepts ids sent as JSON numbers or strings. null decodes to
// the empty id.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, null) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// Ptr returns nil for the empty id.
func (id FlexibleID) Ptr() *string {
	if id == "" {
		return nil
	}
	s := string(id)
	return &s
}

// NumberOrZero decodes any JSON number as itself and every other value,
// including numeric strings, as zero.
type NumberOrZero float64

func (n *NumberOrZero) UnmarshalJSON(b []byte) error {
	*n = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || (b[0] != '-' && (b[0] < '0' || b[0] > '9')) {
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsInf(f, 0) {
		return nil
	}
	*n = NumberOrZero(f)
	return nil
}
