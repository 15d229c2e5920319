package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/askmydata/backend/internal/models"
)

// JSONLoader handles a single object or an array of objects.
// Object key order is kept as the column order.
type JSONLoader struct{}

func NewJSONLoader() *JSONLoader {
	return &JSONLoader{}
}

func (l *JSONLoader) Format() Format {
	return FormatJSON
}

func (l *JSONLoader) Load(data []byte) (models.Table, []models.ParseWarning, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()

	var root json.RawMessage
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("empty document")
		}
		return nil, nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, errors.New("unexpected data after top-level value")
	}

	switch firstByte(root) {
	case '{':
		rec, err := decodeObject(root)
		if err != nil {
			return nil, nil, err
		}
		return models.Table{rec}, nil, nil

	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(root, &elems); err != nil {
			return nil, nil, err
		}
		table := make(models.Table, 0, len(elems))
		for i, elem := range elems {
			if firstByte(elem) != '{' {
				return nil, nil, fmt.Errorf("array element %d is not an object", i)
			}
			rec, err := decodeObject(elem)
			if err != nil {
				return nil, nil, fmt.Errorf("array element %d: %w", i, err)
			}
			table = append(table, rec)
		}
		return table, nil, nil
	}

	return nil, nil, errors.New("top-level value must be an object or an array of objects")
}

// decodeObject walks an object with the token API so keys keep their order.
func decodeObject(raw json.RawMessage) (models.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil {
		return models.Record{}, err
	}

	fields := make([]models.Field, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return models.Record{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return models.Record{}, fmt.Errorf("unexpected object key %v", tok)
		}

		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return models.Record{}, err
		}
		v, err := decodeValue(val)
		if err != nil {
			return models.Record{}, fmt.Errorf("field %q: %w", key, err)
		}
		fields = append(fields, models.Field{Name: key, Value: v})
	}

	return models.NewRecord(fields...), nil
}

// decodeValue maps a JSON scalar to a cell. Nested arrays and objects are
// kept as their compact JSON text.
func decodeValue(raw json.RawMessage) (models.Value, error) {
	switch c := firstByte(raw); {
	case c == 'n':
		return models.Null(), nil
	case c == 't' || c == 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return models.Value{}, err
		}
		return models.Bool(b), nil
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return models.Value{}, err
		}
		return models.Text(s), nil
	case c == '{' || c == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return models.Value{}, err
		}
		return models.Text(buf.String()), nil
	default:
		num := string(bytes.TrimSpace(raw))
		f, err := strconv.ParseFloat(num, 64)
		// Numbers beyond float64 keep their literal digits.
		if errors.Is(err, strconv.ErrRange) {
			return models.Text(num), nil
		}
		if err != nil {
			return models.Value{}, fmt.Errorf("invalid number %s", raw)
		}
		return models.Number(f), nil
	}
}

func firstByte(raw []byte) byte {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}
