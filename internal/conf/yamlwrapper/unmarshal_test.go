package yamlwrapper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnmarshalIntegerMapKey(t *testing.T) {
	buf := []byte(`
1: value
test: value2
`)

	var dest any
	err := Unmarshal(buf, &dest)
	require.NoError(t, err)

	require.Equal(t, map[string]any{
		"1":    "value",
		"test": "value2",
	}, dest)
}

func TestUnmarshalDuplicateKey(t *testing.T) {
	buf := []byte(`
key: value1
key: value2
`)

	err := Unmarshal(buf, &map[string]string{})
	require.ErrorContains(t, err, `key "key" already set in map`)
}

func TestUnmarshalUnknownFields(t *testing.T) {
	type testStruct struct {
		Field1 string `json:"field1"`
		Field2 int    `json:"field2"`
	}

	input := []byte(`field1: test
unknownField: value
field2: 456`)

	var result testStruct
	err := Unmarshal(input, &result)
	require.EqualError(t, err, "unknown parameter 'unknownField'")
}

func TestUnmarshalLegacyBools(t *testing.T) {
	type testStruct struct {
		Field1 bool   `json:"field1"`
		Field2 string `json:"field2"`
		Field3 bool   `json:"field3"`
	}

	input := []byte("field1: yes\n" +
		"field2: \"yes\"\n" +
		"field3: off\n")

	var result testStruct
	err := Unmarshal(input, &result)
	require.NoError(t, err)

	require.Equal(t, testStruct{
		Field1: true,
		Field2: "yes",
		Field3: false,
	}, result)
}

func TestUnmarshalNested(t *testing.T) {
	type inner struct {
		Values []string `json:"values"`
	}
	type outer struct {
		Inner inner `json:"inner"`
	}

	input := []byte("inner:\n" +
		"  values: [a, b]\n")

	var result outer
	err := Unmarshal(input, &result)
	require.NoError(t, err)
	require.Equal(t, outer{Inner: inner{Values: []string{"a", "b"}}}, result)
}
