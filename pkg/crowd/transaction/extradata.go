package transaction

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ExtraData is an opaque container for whitelisted gateway payload fields
// which are stored alongside a transaction
//
// It preserves the order in which fields were set. Values are kept as raw
// JSON and never interpreted by business logic.
type ExtraData struct {
	keys   []string
	values map[string]json.RawMessage
}

// Set adds or replaces a field. The field order is the order of first Set.
func (e *ExtraData) Set(key string, value json.RawMessage) {
	if e.values == nil {
		e.values = make(map[string]json.RawMessage)
	}
	if _, ok := e.values[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.values[key] = value
}

// Get returns the raw value for the given field
func (e ExtraData) Get(key string) (json.RawMessage, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Keys returns the field names in insertion order
func (e ExtraData) Keys() []string {
	keys := make([]string, len(e.keys))
	copy(keys, e.keys)
	return keys
}

func (e ExtraData) Len() int {
	return len(e.keys)
}

func (e ExtraData) Empty() bool {
	return len(e.keys) == 0
}

// MarshalJSON encodes the container as a JSON object in field order
func (e ExtraData) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	buf.WriteByte('{')
	for i, k := range e.keys {
		if i != 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(e.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving the document field order
func (e *ExtraData) UnmarshalJSON(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	e.keys = nil
	e.values = nil
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var value json.RawMessage
		err = dec.Decode(&value)
		if err != nil {
			return err
		}
		e.Set(key, value)
	}
	_, err = dec.Token()
	return err
}

// Value implements the Valuer interface for sql
//
// An empty container is stored as NULL.
func (e ExtraData) Value() (driver.Value, error) {
	if e.Empty() {
		return nil, nil
	}
	b, err := e.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return driver.Value(b), nil
}

// Scan implements the Scanner interface for sql
func (e *ExtraData) Scan(v interface{}) error {
	switch src := v.(type) {
	case nil:
		e.keys, e.values = nil, nil
		return nil
	case []byte:
		return e.UnmarshalJSON(src)
	case string:
		return e.UnmarshalJSON([]byte(src))
	}
	return fmt.Errorf("cannot scan %T into %T", v, e)
}
