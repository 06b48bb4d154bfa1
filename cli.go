package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/Akamitori/nes-emulator-sub000/emu/log"
)

type mode byte

const (
	runMode      mode = iota // Run a ROM
	snakeMode                // Run a 6502 program in the snake host
	romInfosMode             // Show ROM infos
	disasmMode               // Disassemble a ROM
	configMode               // Show or save configuration
	versionMode              // Show version
)

type (
	CLI struct {
		Run      Run       `cmd:"" help:"Run ROM in emulator."`
		Snake    Snake     `cmd:"" help:"Run a raw 6502 program in the snake game host."`
		RomInfos RomInfos  `cmd:"" help:"Show ROM infos." name:"rom-infos"`
		Disasm   Disasm    `cmd:"" help:"Disassemble ROM PRG-ROM."`
		Config   ConfigCmd `cmd:"" help:"Show configuration."`
		Version  Version   `cmd:"" help:"Show version."`

		Log        logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		ConfigPath string     `name:"config" help:"${config_help}" type:"path"`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"Path of the iNES ROM to run." required:"true" type:"existingfile"`

		Trace       *outfile `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		TraceFormat string   `name:"trace-format" help:"${trace_format_help}" placeholder:"text|json"`
		Steps       int64    `name:"steps" help:"Stop after executing that many instructions (0: until BRK)." default:"0"`
		PC          *addr    `name:"pc" help:"Start execution at ADDR instead of the reset vector." placeholder:"ADDR"`
	}

	Snake struct {
		ProgPath string `arg:"" name:"/path/to/program" help:"Path of the raw 6502 program." required:"true" type:"existingfile"`

		Scale int `name:"scale" help:"Window scale factor (0: from config)." default:"0"`
	}

	RomInfos struct {
		RomPaths []string `arg:"" name:"/path/to/rom" help:"Paths of iNES ROMs."`
	}

	Disasm struct {
		RomPath string `arg:"" name:"/path/to/rom" required:"true" type:"existingfile"`

		From  *addr `name:"from" help:"Address of the first instruction (default: reset vector)." placeholder:"ADDR"`
		Count int   `name:"count" help:"Number of instructions." default:"32"`
	}

	ConfigCmd struct {
		Save bool `name:"save" help:"Write the configuration file."`
	}

	Version struct{}
)

var vars = kong.Vars{
	"log_help":          "Enable logging for specified modules.",
	"config_help":       "Configuration file (default: user config directory).",
	"trace_format_help": "Format of the CPU trace log.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("nescore"),
		kong.Description("NES 6502 CPU core and bus emulator."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")

	switch {
	case strings.HasPrefix(ctx.Command(), "run"):
		cfg.mode = runMode
	case strings.HasPrefix(ctx.Command(), "snake"):
		cfg.mode = snakeMode
	case strings.HasPrefix(ctx.Command(), "rom-infos"):
		cfg.mode = romInfosMode
	case strings.HasPrefix(ctx.Command(), "disasm"):
		cfg.mode = disasmMode
	case ctx.Command() == "config":
		cfg.mode = configMode
	case ctx.Command() == "version":
		cfg.mode = versionMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask struct {
	mask log.ModuleMask
	set  bool // --log was provided
	none bool
}

// parseLogModules parses module names into a module mask. none reports
// whether logging should be disabled altogether.
func parseLogModules(names []string) (mask log.ModuleMask, none bool, err error) {
	allLogs := false
	for _, v := range names {
		switch v {
		case "all":
			allLogs = true
		case "no":
			none = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return 0, false, fmt.Errorf("unknown log module %s", v)
			}
			mask |= mod.Mask()
		}
	}

	if none {
		if allLogs {
			return 0, false, fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if mask != 0 {
			return 0, false, fmt.Errorf("cannot combine 'no' with other log modules")
		}
		return 0, true, nil
	}

	if allLogs {
		mask = log.ModuleMaskAll
	}
	return mask, false, nil
}

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	mask, none, err := parseLogModules(strings.Split(tok.Value.(string), ","))
	if err != nil {
		return err
	}
	*lm = logModMask{mask: mask, set: true, none: none}
	return nil
}

func (lm logModMask) apply() {
	if lm.none {
		log.Disable()
		return
	}
	log.DisableDebugModules(log.ModuleMaskAll)
	log.EnableDebugModules(lm.mask)
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

// addr is a 16-bit CPU address, in hexadecimal ($C000, 0xC000 or C000).
type addr uint16

func parseAddr(s string) (addr, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "$"), "0x")
	v, err := strconv.ParseUint(hex, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return addr(v), nil
}

// Decode implements kong.MapperValue interface.
func (a *addr) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	v, err := parseAddr(tok.Value.(string))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (a addr) String() string { return fmt.Sprintf("$%04X", uint16(a)) }

// MarshalText and UnmarshalText allow addresses in the TOML configuration.
func (a addr) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *addr) UnmarshalText(text []byte) error {
	v, err := parseAddr(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n\t"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
