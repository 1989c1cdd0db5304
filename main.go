package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"gbcore/emu"
)

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case versionMode:
		printVersion()
	case romInfosMode:
		romInfosMain(cli.RomInfos.CartPath)
	case disasmMode:
		disasmMain(cli.Disasm)
	case runMode:
		os.Exit(runMain(cli.Run, loadConfig(cli.Config)))
	}
}

func loadConfig(path string) emu.Config {
	if path == "" {
		return emu.LoadConfigOrDefault()
	}
	cfg, err := emu.LoadConfig(path)
	checkf(err, "failed to load config")
	return cfg
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("gbcore", version)
}
