package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Row is a single result row from a SQL execution, decoded as an ordered
// field list. encoding/json maps would lose the document's key order, and
// row comparison is deliberately order-sensitive, so rows are decoded by
// walking the object tokens instead.
type Row struct {
	Columns []string
	Values  []any
}

// UnmarshalJSON decodes a JSON object preserving the order its keys appear
// in the document.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("row: expected JSON object, got %v", tok)
	}

	r.Columns = r.Columns[:0]
	r.Values = r.Values[:0]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("row: expected object key, got %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		r.Columns = append(r.Columns, key)
		r.Values = append(r.Values, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// JoinValues renders the row's values separated by ", ", matching the
// feedback format shown next to a failed query.
func (r Row) JoinValues() string {
	parts := make([]string, len(r.Values))
	for i, v := range r.Values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}

// FormatRows renders a row set as "a, b | c, d" for inline feedback.
func FormatRows(rows []Row) string {
	parts := make([]string, len(rows))
	for i, row := range rows {
		parts[i] = row.JoinValues()
	}
	return strings.Join(parts, " | ")
}

// RowsEqual reports whether two row sets are exactly equal under the strict
// comparison rule: each row is serialized as its ordered value list and the
// serializations must match byte for byte. Row order, field order, and value
// types all matter; no normalization is applied.
func RowsEqual(got, want []Row) bool {
	if len(got) != len(want) {
		return false
	}
	gotJSON, err := json.Marshal(valueLists(got))
	if err != nil {
		return false
	}
	wantJSON, err := json.Marshal(valueLists(want))
	if err != nil {
		return false
	}
	return bytes.Equal(gotJSON, wantJSON)
}

func valueLists(rows []Row) [][]any {
	lists := make([][]any, len(rows))
	for i, row := range rows {
		lists[i] = row.Values
	}
	return lists
}
