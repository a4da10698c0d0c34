// Package yamlwrapper contains a YAML unmarshaler.
package yamlwrapper

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/bluenviron/mj2wrap/internal/conf/jsonwrapper"
)

// differences with respect to the standard package:
// - duplicate keys are rejected
// - non-string keys are converted into strings
// - all differences of jsonwrapper are inherited

func convertKeys(i any) any {
	switch x := i.(type) {
	case map[any]any:
		m2 := make(map[string]any, len(x))
		for k, v := range x {
			m2[fmt.Sprint(k)] = convertKeys(v)
		}
		return m2

	case []any:
		a2 := make([]any, len(x))
		for i, v := range x {
			a2[i] = convertKeys(v)
		}
		return a2
	}

	return i
}

// Unmarshal loads the configuration from YAML.
func Unmarshal(buf []byte, dest any) error {
	// "UnmarshalStrict is like Unmarshal except that (...) mapping keys that are duplicates,
	// will result in an error."
	var temp any
	err := yaml.UnmarshalStrict(buf, &temp)
	if err != nil {
		return err
	}

	// JSON only supports string keys
	temp = convertKeys(temp)

	buf, err = json.Marshal(temp)
	if err != nil {
		return err
	}

	return jsonwrapper.Unmarshal(buf, dest)
}
