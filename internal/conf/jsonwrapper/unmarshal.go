// Package jsonwrapper contains a strict JSON unmarshaler for configuration files.
package jsonwrapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// differences with respect to the standard package:
// - unknown parameters are rejected and reported with their full path
// - existing elements of slices are never reused, fixing https://github.com/golang/go/issues/21092
// - slices cannot be set to null, unless they are behind a pointer

func joinPath(path string, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func jsonKeys(t reflect.Type) map[string]int {
	keys := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		keys[strings.Split(tag, ",")[0]] = i
	}
	return keys
}

func check(v reflect.Value, raw any, path string) error {
	switch v.Kind() {
	case reflect.Pointer:
		if raw == nil {
			return nil
		}
		if v.IsNil() {
			return check(reflect.New(v.Type().Elem()).Elem(), raw, path)
		}
		return check(v.Elem(), raw, path)

	case reflect.Slice:
		if raw == nil {
			if path == "" {
				return fmt.Errorf("value cannot be null")
			}
			return fmt.Errorf("'%s' cannot be null", path)
		}

		if v.CanSet() && !v.IsNil() {
			v.Set(reflect.Zero(v.Type()))
		}

		if items, ok := raw.([]any); ok {
			for i, item := range items {
				err := check(reflect.New(v.Type().Elem()).Elem(), item, fmt.Sprintf("%s[%d]", path, i))
				if err != nil {
					return err
				}
			}
		}

	case reflect.Struct:
		rawMap, ok := raw.(map[string]any)
		if !ok {
			return nil
		}

		keys := jsonKeys(v.Type())

		for _, key := range slices.Sorted(maps.Keys(rawMap)) {
			i, ok := keys[key]
			if !ok {
				return fmt.Errorf("unknown parameter '%s'", joinPath(path, key))
			}

			err := check(v.Field(i), rawMap[key], joinPath(path, key))
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// Unmarshal decodes JSON into dest.
func Unmarshal(buf []byte, dest any) error {
	var raw any
	err := json.Unmarshal(buf, &raw)
	if err != nil {
		return err
	}

	err = check(reflect.ValueOf(dest).Elem(), raw, "")
	if err != nil {
		return err
	}

	d := json.NewDecoder(bytes.NewReader(buf))
	d.DisallowUnknownFields()
	return d.Decode(dest)
}
