package json

import (
	"encoding/json"
	"strconv"
)

// RequiredInt64 is used as a JSON type for integer values transported as
// string literals, e.g. correlation ids in gateway metadata maps.
//
// The Set flag indicates whether an unmarshaling actually happened on the type
type RequiredInt64 struct {
	Set   bool
	Int64 int64
}

func (r RequiredInt64) MarshalJSON() ([]byte, error) {
	lit := strconv.FormatInt(r.Int64, 10)
	return json.Marshal(lit)
}

func (r *RequiredInt64) UnmarshalJSON(raw []byte) error {
	var lit string
	var err error
	if err = json.Unmarshal(raw, &lit); err != nil {
		return err
	}
	r.Int64, err = strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return err
	}
	r.Set = true
	return nil
}
