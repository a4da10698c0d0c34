package conf

import (
	"encoding/json"

	"code.cloudfoundry.org/bytefmt"
)

// StringSize is a size that is unmarshaled from a string, like "10KB" or "1M".
type StringSize uint64

// MarshalJSON implements json.Marshaler.
func (s StringSize) MarshalJSON() ([]byte, error) {
	if s == 0 {
		return json.Marshal("0")
	}
	return json.Marshal(bytefmt.ByteSize(uint64(s)))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringSize) UnmarshalJSON(b []byte) error {
	var in string
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	// zero disables the limit
	if in == "0" {
		*s = 0
		return nil
	}

	v, err := bytefmt.ToBytes(in)
	if err != nil {
		return err
	}
	*s = StringSize(v)

	return nil
}

// UnmarshalEnv implements env.Unmarshaler.
func (s *StringSize) UnmarshalEnv(_ string, v string) error {
	return s.UnmarshalJSON([]byte(`"` + v + `"`))
}
