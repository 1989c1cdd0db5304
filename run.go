package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"gbcore/emu"
	"gbcore/gbrom"
	"gbcore/hw"
)

// loadImages reads the boot image and the optional cartridge.
func loadImages(bootPath, cartPath string) (boot, cart []byte) {
	if bootPath != "" {
		var err error
		boot, err = gbrom.ReadFile(bootPath)
		checkf(err, "failed to load boot image")
	}
	if cartPath != "" {
		rom, err := gbrom.Open(cartPath)
		checkf(err, "failed to load cartridge")
		cart = rom.Data
	}
	return boot, cart
}

// runMain runs the emulation loop and returns the process exit code.
func runMain(args Run, cfg emu.Config) int {
	boot, cart := loadImages(args.Boot, args.CartPath)

	// Command line flags take precedence over the config file.
	if args.MaxSteps != 0 {
		cfg.Emulation.MaxSteps = args.MaxSteps
	}
	if args.OnDecodeError != "" {
		cfg.Emulation.OnDecodeError = args.OnDecodeError
	}
	if args.TraceFormat != "" {
		cfg.Debug.TraceFormat = args.TraceFormat
	}
	cfg.Debug.Breakpoints = append(cfg.Debug.Breakpoints, args.Breakpoints...)
	if args.Trace != nil {
		cfg.TraceOut = args.Trace
		defer args.Trace.Close()
	}

	emulator, err := emu.Launch(boot, cart, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start emulator: %v\n", err)
		return 1
	}
	defer emulator.Close()

	if args.CPUProfile != "" {
		stop, err := startCPUProfile(args.CPUProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		defer stop()
	}

	sigc := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigc, os.Interrupt)
	defer signal.Stop(sigc)
	defer close(done)
	go func() {
		select {
		case <-sigc:
			emulator.Stop()
		case <-done:
		}
	}()

	reason, err := emulator.Run()
	fmt.Printf("stopped: %s after %d steps, %d cycles\n", reason, emulator.Steps(), emulator.Cycles())
	printRegisters(emulator.CPU)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		for _, f := range emulator.Backtrace() {
			fmt.Fprintf(os.Stderr, "\t%-18s %s\n", f.Entry, f.PC)
		}
		return 1
	}
	return 0
}

// startCPUProfile writes a CPU profile to path until stop is called.
func startCPUProfile(path string) (stop func(), err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create cpu profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to start cpu profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
		fmt.Println("CPU profile written to", path)
	}, nil
}

func printRegisters(cpu *hw.CPU) {
	fmt.Printf("A:%02X F:%s BC:%04X DE:%04X HL:%04X SP:%04X PC:%04X\n",
		cpu.A, cpu.F, cpu.BC(), cpu.DE(), cpu.HL(), cpu.SP, cpu.PC)
}

func disasmMain(args Disasm) {
	boot, cart := loadImages(args.Boot, args.CartPath)
	mem := hw.NewMemory(boot, cart)
	for _, dop := range hw.Disassemble(mem, uint16(args.Start), args.Count) {
		fmt.Printf("%s\n", dop.Bytes())
	}
}

func romInfosMain(path string) {
	rom, err := gbrom.Open(path)
	checkf(err, "failed to open cartridge")

	checksum := "ok"
	if !rom.HeaderChecksumOK() {
		checksum = "bad"
	}
	logo := "ok"
	if !rom.LogoOK() {
		logo = "bad"
	}

	fmt.Printf("Title:           %s\n", rom.Title())
	fmt.Printf("Cartridge type:  %s\n", rom.CartTypeName())
	fmt.Printf("ROM size:        %d KB\n", rom.ROMSize()/1024)
	fmt.Printf("RAM size:        %d KB\n", rom.RAMSize()/1024)
	fmt.Printf("Version:         %d\n", rom.Version())
	fmt.Printf("Header checksum: $%02X (%s)\n", rom.HeaderChecksum(), checksum)
	fmt.Printf("Global checksum: $%04X\n", rom.GlobalChecksum())
	fmt.Printf("Logo:            %s\n", logo)
	fmt.Printf("File size:       %d bytes\n", len(rom.Data))
}
