package hw

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"

	"gbcore/tests"
)

type sstState struct {
	PC, SP                 uint16
	A, F, B, C, D, E, H, L uint8
	IME                    uint8
	RAM                    [][2]uint16
}

type sstCase struct {
	Name    string
	Initial sstState
	Final   sstState
	Cycles  int // bus cycles listed in the test
}

func (s *sstState) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "pc":
			s.PC, err = d.UInt16()
		case "sp":
			s.SP, err = d.UInt16()
		case "a":
			s.A, err = d.UInt8()
		case "f":
			s.F, err = d.UInt8()
		case "b":
			s.B, err = d.UInt8()
		case "c":
			s.C, err = d.UInt8()
		case "d":
			s.D, err = d.UInt8()
		case "e":
			s.E, err = d.UInt8()
		case "h":
			s.H, err = d.UInt8()
		case "l":
			s.L, err = d.UInt8()
		case "ime":
			s.IME, err = d.UInt8()
		case "ram":
			err = d.Arr(func(d *jx.Decoder) error {
				var cell [2]uint16
				i := 0
				err := d.Arr(func(d *jx.Decoder) error {
					v, err := d.UInt16()
					if i < 2 {
						cell[i] = v
					}
					i++
					return err
				})
				s.RAM = append(s.RAM, cell)
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	})
}

func (tc *sstCase) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			name, err := d.Str()
			tc.Name = name
			return err
		case "initial":
			return tc.Initial.decode(d)
		case "final":
			return tc.Final.decode(d)
		case "cycles":
			return d.Arr(func(d *jx.Decoder) error {
				tc.Cycles++
				return d.Skip()
			})
		}
		return d.Skip()
	})
}

func loadSingleStepTests(path string) ([]sstCase, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cases []sstCase
	err = jx.DecodeBytes(buf).Arr(func(d *jx.Decoder) error {
		var tc sstCase
		if err := tc.decode(d); err != nil {
			return err
		}
		cases = append(cases, tc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cases, nil
}

func (s *sstState) load(cpu *CPU) {
	cpu.PC, cpu.SP = s.PC, s.SP
	cpu.SetAF(uint16(s.A)<<8 | uint16(s.F))
	cpu.B, cpu.C, cpu.D, cpu.E, cpu.H, cpu.L = s.B, s.C, s.D, s.E, s.H, s.L
	cpu.IME = s.IME != 0
	for _, cell := range s.RAM {
		cpu.Bus.Write8(cell[0], uint8(cell[1]))
	}
}

func sstStateOf(cpu *CPU, want sstState) sstState {
	s := sstState{
		PC: cpu.PC, SP: cpu.SP,
		A: cpu.A, F: cpu.F.Bits(),
		B: cpu.B, C: cpu.C, D: cpu.D, E: cpu.E, H: cpu.H, L: cpu.L,
	}
	if cpu.IME {
		s.IME = 1
	}
	for _, cell := range want.RAM {
		s.RAM = append(s.RAM, [2]uint16{cell[0], uint16(cpu.Bus.Read8(cell[0], true))})
	}
	return s
}

// Opcodes whose tests depend on behavior not modeled here.
var sstSkipped = map[string]string{
	"10": "STOP",
	"76": "HALT",
	"fb": "EI latches IME one instruction later",
}

// TestSingleStepTests runs the SingleStepTests sm83 suite. It downloads 512
// files on first use, so it only runs when GBCORE_SST is set.
func TestSingleStepTests(t *testing.T) {
	if os.Getenv("GBCORE_SST") == "" {
		t.Skip("set GBCORE_SST=1 to run the SingleStepTests suite")
	}
	if testing.Short() {
		t.Skip("skipping long test")
	}

	dir := tests.SingleStepTestsPath(t)
	for _, name := range tests.SingleStepTestNames() {
		t.Run(name, func(t *testing.T) {
			if why, ok := sstSkipped[name]; ok {
				t.Skipf("skipping %s", why)
			}
			path := filepath.Join(dir, name+".json")
			if _, err := os.Stat(path); err != nil {
				t.Skip("no test file (illegal opcode)")
			}
			t.Parallel()

			cases, err := loadSingleStepTests(path)
			if err != nil {
				t.Fatal(err)
			}
			for _, tc := range cases {
				if !runSingleStepTest(t, tc) {
					return
				}
			}
		})
	}
}

func runSingleStepTest(t *testing.T, tc sstCase) bool {
	cpu := NewCPU(newFlatBus())
	tc.Initial.load(cpu)

	cycles, err := cpu.Step()
	if err != nil {
		t.Errorf("%s: %v", tc.Name, err)
		return false
	}

	ok := true
	if want := tc.Cycles * 4; cycles != want {
		t.Errorf("%s: cycles = %d, want %d", tc.Name, cycles, want)
		ok = false
	}
	got := sstStateOf(cpu, tc.Final)
	if diff := cmp.Diff(tc.Final, got); diff != "" {
		t.Errorf("%s: state differs (-want +got):\n%s", tc.Name, diff)
		ok = false
	}
	if !ok {
		bus := newFlatBus()
		for _, cell := range tc.Initial.RAM {
			bus.Write8(cell[0], uint8(cell[1]))
		}
		t.Logf("%s: %s", tc.Name, disasm(bus, tc.Initial.PC))
	}
	return ok
}
