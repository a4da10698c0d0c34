// Package core contains the main struct of the software.
package core

import (
	"context"
	"fmt"
	"io"

	"github.com/alecthomas/kong"

	"github.com/bluenviron/mj2wrap/internal/conf"
	"github.com/bluenviron/mj2wrap/internal/logger"
)

var version = "v0.0.0"

var defaultConfPaths = []string{
	"mj2wrap.yml",
	"/usr/local/etc/mj2wrap.yml",
	"/usr/etc/mj2wrap.yml",
	"/etc/mj2wrap/mj2wrap.yml",
}

type cli struct {
	Version  kong.VersionFlag `help:"print version"`
	Confpath string           `name:"conf" help:"path to a config file"`

	Wrap struct {
		Basename  string `arg:"" help:"codestreams are read from <basename>_00000.<ext>, <basename>_00001.<ext> ..."`
		Output    string `arg:"" help:"path of the MJ2 file"`
		FrameRate uint32 `help:"frames per second, overrides the configuration"`
	} `cmd:"" help:"wrap a sequence of codestreams into a MJ2 file"`

	Dump struct {
		File string `arg:"" help:"JP2 or MJ2 file, or bare codestream"`
	} `cmd:"" help:"print the box and marker structure of a file"`
}

// Core is an instance of mj2wrap.
type Core struct {
	ctx      context.Context
	stdout   io.Writer
	confPath string
	conf     *conf.Conf
	logger   *logger.Logger
}

// Run parses the command line, runs the selected command and returns the exit code.
func Run(ctx context.Context, args []string, stdout io.Writer) int {
	var c cli

	parser, err := kong.New(&c,
		kong.Name("mj2wrap"),
		kong.Description("mj2wrap "+version),
		kong.UsageOnError(),
		kong.Writers(stdout, stdout),
		kong.Vars{"version": version},
		kong.ValueFormatter(func(value *kong.Value) string {
			switch value.Name {
			case "conf":
				return "path to a config file. The default is mj2wrap.yml."

			default:
				return kong.DefaultHelpValueFormatter(value)
			}
		}))
	if err != nil {
		panic(err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stdout, "ERR: %s\n", err)
		return 1
	}

	p := &Core{
		ctx:    ctx,
		stdout: stdout,
	}

	p.conf, p.confPath, err = conf.Load(c.Confpath, defaultConfPaths)
	if err != nil {
		fmt.Fprintf(stdout, "ERR: %s\n", err)
		return 1
	}

	p.logger = p.conf.Logger()
	err = p.logger.Initialize()
	if err != nil {
		fmt.Fprintf(stdout, "ERR: %s\n", err)
		return 1
	}
	defer p.logger.Close()

	p.Log(logger.Debug, "mj2wrap %s", version)
	if p.confPath == "" {
		p.Log(logger.Debug, "configuration file not found, using the default configuration")
	} else {
		p.Log(logger.Debug, "configuration loaded from %s", p.confPath)
	}

	switch kctx.Command() {
	case "wrap <basename> <output>":
		if c.Wrap.FrameRate != 0 {
			p.conf.FrameRate = c.Wrap.FrameRate
		}
		err = p.wrap(c.Wrap.Basename, c.Wrap.Output)

	case "dump <file>":
		err = p.dump(c.Dump.File)

	default:
		err = fmt.Errorf("unsupported command: %s", kctx.Command())
	}

	if err != nil {
		p.Log(logger.Error, "%s", err)
		return 1
	}

	return 0
}

// Log implements logger.Writer.
func (p *Core) Log(level logger.Level, format string, args ...any) {
	p.logger.Log(level, format, args...)
}
