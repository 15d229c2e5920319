package models

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
)

// Field is one column/value pair used to build a Record.
type Field struct {
	Name  string
	Value Value
}

// Record is one row of ingested data. Column order is preserved and the
// record cannot be modified after construction.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord builds a record from fields in order. A repeated column name
// keeps its first position and takes the last value.
func NewRecord(fields ...Field) Record {
	r := Record{
		keys:   make([]string, 0, len(fields)),
		values: make(map[string]Value, len(fields)),
	}
	for _, f := range fields {
		if _, seen := r.values[f.Name]; !seen {
			r.keys = append(r.keys, f.Name)
		}
		r.values[f.Name] = f.Value
	}
	return r
}

// Keys returns the column names in order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the value for a column.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

func (r Record) Len() int { return len(r.keys) }

// String renders the record as an ordered mapping, e.g. {"a": "1", "b": 2}.
func (r Record) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(Text(k).String())
		sb.WriteString(": ")
		sb.WriteString(r.values[k].String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Map returns the record as a plain map. Column order is lost.
func (r Record) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(r.keys))
	for _, k := range r.keys {
		out[k] = r.values[k].Interface()
	}
	return out
}

// MarshalJSON encodes the record as a JSON object in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k].Interface())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
