package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

type pcContext uint16

func (pc pcContext) AddLogContext(e *EntryZ) { e.Hex16("PC", uint16(pc)) }

func TestEntryZ(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	ctx := pcContext(0x0150)
	AddContext(ctx)
	defer RemoveContext(ctx)

	ModHwIo.ErrorZ("unmapped Read8").
		Hex16("addr", 0xA000).
		Hex8("val", 0x0F).
		Bool("ro", true).
		Error("err", errors.New("boom")).
		Uint("size", 1<<15).
		Duration("elapsed", 1500*time.Millisecond).
		End()

	out := buf.String()
	for _, want := range []string{
		`msg="unmapped Read8"`,
		`_mod=hwio`,
		`addr=A000`,
		`val=0F`,
		`ro=true`,
		`err=boom`,
		`size=32768`,
		`elapsed=1.5s`,
		`PC=0150`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q does not contain %q", out, want)
		}
	}
}

func TestDisabledModule(t *testing.T) {
	if e := ModCPU.DebugZ("hidden"); e != nil {
		t.Fatalf("DebugZ on a non-debug module should return nil")
	}

	// Calls on a nil entry are no-ops.
	var e *EntryZ
	e.Hex16("addr", 0).String("s", "s").End()

	EnableDebugModules(ModCPU.Mask())
	defer DisableDebugModules(ModCPU.Mask())
	if e := ModCPU.DebugZ("shown"); e == nil {
		t.Fatalf("DebugZ on an enabled module should not return nil")
	}
}

func TestModuleByName(t *testing.T) {
	mod, ok := ModuleByName("cpu")
	if !ok || mod != ModCPU {
		t.Fatalf("ModuleByName(cpu) = %v,%v, want %v,true", mod, ok, ModCPU)
	}
	if _, ok := ModuleByName("ppu"); ok {
		t.Fatalf("ModuleByName(ppu) should fail")
	}

	names := ModuleNames()
	if len(names) == 0 || names[0] != "emu" {
		t.Fatalf("ModuleNames() = %v", names)
	}
}
