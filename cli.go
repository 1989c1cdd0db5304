package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"gbcore/emu"
	"gbcore/emu/log"
)

type mode byte

const (
	runMode      mode = iota // Run boot ROM and cartridge
	disasmMode               // Disassemble an image
	romInfosMode             // Show ROM infos
	versionMode              // Show gbcore version
)

type (
	CLI struct {
		Run      Run      `cmd:"" help:"Run boot ROM and cartridge. (default command)" default:"withargs"`
		Disasm   Disasm   `cmd:"" help:"Disassemble the address space."`
		RomInfos RomInfos `cmd:"" help:"Show cartridge header infos." name:"rom-infos"`
		Version  Version  `cmd:"" help:"Show gbcore version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `name:"config" help:"${config_help}" type:"existingfile" placeholder:"FILE"`

		mode mode
	}

	Run struct {
		Boot     string `name:"boot" help:"Boot ROM image." required:"" type:"existingfile"`
		CartPath string `arg:"" name:"/path/to/cart" help:"Cartridge image." optional:"" type:"existingfile"`

		Trace         *outfile         `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		TraceFormat   string           `name:"trace-format" help:"Trace log format (text|json)." placeholder:"FORMAT"`
		MaxSteps      int64            `name:"max-steps" help:"Stop after N instructions." placeholder:"N"`
		Breakpoints   []emu.Addr       `name:"break" help:"Stop before executing the instruction at ADDR (hex)." placeholder:"ADDR"`
		OnDecodeError emu.DecodePolicy `name:"on-decode-error" help:"What to do on unknown opcodes (halt|skip)." placeholder:"POLICY"`
		CPUProfile    string           `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
	}

	Disasm struct {
		Boot     string `name:"boot" help:"Boot ROM image." type:"existingfile"`
		CartPath string `arg:"" name:"/path/to/cart" help:"Cartridge image." optional:"" type:"existingfile"`

		Start emu.Addr `name:"start" help:"First address to disassemble (hex)." default:"0000"`
		Count int      `name:"count" help:"Number of instructions." default:"32"`
	}

	RomInfos struct {
		CartPath string `arg:"" name:"/path/to/cart" type:"existingfile"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"cpuprofile_help": "Write CPU profile to file.",
	"log_help":        "Enable logging for specified modules.",
	"config_help":     "Configuration file (defaults to the one in the gbcore config directory).",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("gbcore"),
		kong.Description("SM83 CPU core and execution driver."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch {
	case strings.HasPrefix(ctx.Command(), "disasm"):
		cfg.mode = disasmMode
	case ctx.Command() == "rom-infos </path/to/cart>":
		cfg.mode = romInfosMode
	case ctx.Command() == "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
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

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
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

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
