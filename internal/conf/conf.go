// Package conf contains the struct that holds the configuration of the software.
package conf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/bluenviron/mj2wrap/internal/conf/env"
	"github.com/bluenviron/mj2wrap/internal/conf/yamlwrapper"
	"github.com/bluenviron/mj2wrap/internal/logger"
	"github.com/bluenviron/mj2wrap/internal/mj2"
)

// EnvPrefix is the prefix of environment variables that override the configuration.
const EnvPrefix = "MJ2WRAP"

func firstThatExists(paths []string) string {
	for _, pa := range paths {
		_, err := os.Stat(pa)
		if err == nil {
			return pa
		}
	}
	return ""
}

// Conf is a configuration.
type Conf struct {
	// Logging
	LogLevel        LogLevel        `json:"logLevel"`
	LogDestinations LogDestinations `json:"logDestinations"`
	LogStructured   bool            `json:"logStructured"`
	LogFile         string          `json:"logFile"`

	// Muxing
	FrameRate        uint32     `json:"frameRate"`
	MaxStructureSize StringSize `json:"maxStructureSize"`
	InputExtension   string     `json:"inputExtension"`
}

func (conf *Conf) setDefaults() {
	conf.LogLevel = LogLevel(logger.Info)
	conf.LogDestinations = LogDestinations{logger.DestinationStdout}
	conf.LogStructured = false
	conf.LogFile = "mj2wrap.log"

	conf.FrameRate = mj2.DefaultFrameRate
	conf.MaxStructureSize = 0
	conf.InputExtension = mj2.DefaultInputExtension
}

// Load loads a Conf.
// When fpath is empty, the first existing path of defaultConfPaths is used, if any.
func Load(fpath string, defaultConfPaths []string) (*Conf, string, error) {
	conf := &Conf{}

	fpath, err := conf.loadFromFile(fpath, defaultConfPaths)
	if err != nil {
		return nil, "", err
	}

	err = env.Load(EnvPrefix, conf)
	if err != nil {
		return nil, "", err
	}

	err = conf.Validate()
	if err != nil {
		return nil, "", err
	}

	return conf, fpath, nil
}

func (conf *Conf) loadFromFile(fpath string, defaultConfPaths []string) (string, error) {
	if fpath == "" {
		fpath = firstThatExists(defaultConfPaths)

		// when the configuration file is not explicitly set,
		// it is optional.
		if fpath == "" {
			conf.setDefaults()
			return "", nil
		}
	}

	byts, err := os.ReadFile(fpath)
	if err != nil {
		return "", err
	}

	// an empty file contains the default configuration
	if len(bytes.TrimSpace(byts)) == 0 {
		conf.setDefaults()
		return fpath, nil
	}

	err = yamlwrapper.Unmarshal(byts, conf)
	if err != nil {
		return "", err
	}

	return fpath, nil
}

// Validate checks the configuration for errors.
func (conf *Conf) Validate() error {
	if conf.FrameRate == 0 {
		return fmt.Errorf("'frameRate' must be greater than zero")
	}

	if conf.InputExtension == "" {
		return fmt.Errorf("'inputExtension' must not be empty")
	}

	if strings.HasPrefix(conf.InputExtension, ".") {
		return fmt.Errorf("'inputExtension' must not start with a dot")
	}

	if slices.Contains(conf.LogDestinations, logger.DestinationFile) && conf.LogFile == "" {
		return fmt.Errorf("'logFile' must be set when logging to file")
	}

	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (conf *Conf) UnmarshalJSON(b []byte) error {
	conf.setDefaults()

	type alias Conf
	d := json.NewDecoder(bytes.NewReader(b))
	d.DisallowUnknownFields()
	return d.Decode((*alias)(conf))
}

// Logger returns the logger described by the configuration.
func (conf *Conf) Logger() *logger.Logger {
	return &logger.Logger{
		Level:        logger.Level(conf.LogLevel),
		Destinations: conf.LogDestinations,
		Structured:   conf.LogStructured,
		File:         conf.LogFile,
	}
}

// Options returns the muxing options described by the configuration.
func (conf *Conf) Options(log logger.Writer) mj2.Options {
	return mj2.Options{
		FrameRate:        conf.FrameRate,
		MaxStructureSize: uint64(conf.MaxStructureSize),
		InputExtension:   conf.InputExtension,
		Log:              log,
	}
}
