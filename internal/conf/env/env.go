// Package env contains a function to load configuration from environment.
package env

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// Unmarshaler can be implemented to override the unmarshaling process.
type Unmarshaler interface {
	UnmarshalEnv(prefix string, v string) error
}

func loadEnvInternal(env map[string]string, prefix string, prv reflect.Value) error {
	if prv.Kind() != reflect.Pointer {
		return loadEnvInternal(env, prefix, prv.Addr())
	}

	rt := prv.Type().Elem()

	if i, ok := prv.Interface().(Unmarshaler); ok {
		if ev, ok := env[prefix]; ok {
			if prv.IsNil() {
				prv.Set(reflect.New(rt))
				i = prv.Interface().(Unmarshaler)
			}
			err := i.UnmarshalEnv(prefix, ev)
			if err != nil {
				return fmt.Errorf("%s: %w", prefix, err)
			}
		}
		return nil
	}

	ev, ok := env[prefix]

	switch rt.Kind() {
	case reflect.String:
		if ok {
			prv.Elem().SetString(ev)
		}
		return nil

	case reflect.Int, reflect.Int32, reflect.Int64:
		if ok {
			iv, err := strconv.ParseInt(ev, 10, rt.Bits())
			if err != nil {
				return fmt.Errorf("%s: %w", prefix, err)
			}
			prv.Elem().SetInt(iv)
		}
		return nil

	case reflect.Uint, reflect.Uint32, reflect.Uint64:
		if ok {
			iv, err := strconv.ParseUint(ev, 10, rt.Bits())
			if err != nil {
				return fmt.Errorf("%s: %w", prefix, err)
			}
			prv.Elem().SetUint(iv)
		}
		return nil

	case reflect.Bool:
		if ok {
			switch strings.ToLower(ev) {
			case "yes", "true":
				prv.Elem().SetBool(true)

			case "no", "false":
				prv.Elem().SetBool(false)

			default:
				return fmt.Errorf("%s: invalid value '%s'", prefix, ev)
			}
		}
		return nil

	case reflect.Slice:
		if rt.Elem().Kind() == reflect.String {
			if ok {
				if ev == "" {
					prv.Elem().Set(reflect.MakeSlice(rt, 0, 0))
				} else {
					prv.Elem().Set(reflect.ValueOf(strings.Split(ev, ",")).Convert(rt))
				}
			}
			return nil
		}

	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			jsonTag := f.Tag.Get("json")

			// load only public fields
			if jsonTag == "" || jsonTag == "-" {
				continue
			}

			err := loadEnvInternal(env, prefix+"_"+
				strings.ToUpper(strings.Split(jsonTag, ",")[0]), prv.Elem().Field(i))
			if err != nil {
				return err
			}
		}
		return nil
	}

	return fmt.Errorf("unsupported type: %v", rt)
}

func envToMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		tmp := strings.SplitN(kv, "=", 2)
		env[tmp[0]] = tmp[1]
	}
	return env
}

// Load loads the configuration from the environment.
// Each field is read from the variable named <prefix>_<JSON KEY IN UPPERCASE>.
func Load(prefix string, v any) error {
	return loadEnvInternal(envToMap(), prefix, reflect.ValueOf(v).Elem())
}
