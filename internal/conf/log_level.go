package conf

import (
	"encoding/json"
	"fmt"

	"github.com/bluenviron/mj2wrap/internal/logger"
)

// LogLevel is the logLevel parameter.
type LogLevel logger.Level

// names in order of increasing severity.
var logLevelNames = []struct {
	level LogLevel
	name  string
}{
	{LogLevel(logger.Debug), "debug"},
	{LogLevel(logger.Info), "info"},
	{LogLevel(logger.Warn), "warn"},
	{LogLevel(logger.Error), "error"},
}

// MarshalJSON implements json.Marshaler.
func (d LogLevel) MarshalJSON() ([]byte, error) {
	for _, e := range logLevelNames {
		if e.level == d {
			return json.Marshal(e.name)
		}
	}
	return nil, fmt.Errorf("invalid log level: %v", d)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *LogLevel) UnmarshalJSON(b []byte) error {
	var in string
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	for _, e := range logLevelNames {
		if e.name == in {
			*d = e.level
			return nil
		}
	}

	return fmt.Errorf("invalid log level: '%s', use one of debug, info, warn, error", in)
}

// UnmarshalEnv implements env.Unmarshaler.
func (d *LogLevel) UnmarshalEnv(_ string, v string) error {
	return d.UnmarshalJSON([]byte(`"` + v + `"`))
}
