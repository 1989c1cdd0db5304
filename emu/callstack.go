package emu

import (
	"fmt"
	"slices"
)

type stackFrameFlag uint8

const (
	sffNone stackFrameFlag = iota
	sffRST
)

type stackFrame struct {
	src    uint16
	target uint16
	ret    uint16
	flag   stackFrameFlag
}

type callStack []stackFrame

func (cs *callStack) push(src, dst, ret uint16, flag stackFrameFlag) {
	*cs = append(*cs, stackFrame{
		src:    src,
		target: dst,
		ret:    ret,
		flag:   flag,
	})
}

func (cs *callStack) len() int {
	return len(*cs)
}

func (cs *callStack) pop() {
	if cs.len() == 0 {
		return
	}
	*cs = (*cs)[:cs.len()-1]
}

// track updates the call stack after the instruction at pc executed. sp and
// newSP are the stack pointer before and after execution.
func (cs *callStack) track(opcode uint8, pc, newPC, sp, newSP uint16) {
	switch {
	case isCall(opcode):
		if newSP == sp-2 {
			cs.push(pc, newPC, pc+3, sffNone)
		}
	case isRST(opcode):
		cs.push(pc, newPC, pc+1, sffRST)
	case isRet(opcode):
		if newSP == sp+2 {
			// Unbalanced returns (e.g. a pushed address) pop until the frame
			// matching the return address, if any.
			for i := cs.len() - 1; i >= 0; i-- {
				if (*cs)[i].ret == newPC {
					*cs = (*cs)[:i]
					return
				}
			}
			cs.pop()
		}
	}
}

func isCall(opcode uint8) bool {
	switch opcode {
	case 0xCD, 0xC4, 0xCC, 0xD4, 0xDC:
		return true
	}
	return false
}

func isRST(opcode uint8) bool { return opcode&0xC7 == 0xC7 }

func isRet(opcode uint8) bool {
	switch opcode {
	case 0xC9, 0xD9, 0xC0, 0xC8, 0xD0, 0xD8:
		return true
	}
	return false
}

type frameInfo [2]string

func (cs *callStack) build(pc uint16) []frameInfo {
	nfos := make([]frameInfo, 0, cs.len()+1)
	var curf *stackFrame
	for i, f := range *cs {
		if i > 0 {
			curf = &((*cs)[i-1])
		}
		src := fmt.Sprintf("$%04X", f.src)
		nfos = slices.Insert(nfos, 0, frameInfo{
			cs.entryPoint(curf),
			src,
		})
	}

	// Current frame
	curf = nil
	if cs.len() > 0 {
		curf = &((*cs)[cs.len()-1])
	}

	return slices.Insert(nfos, 0, frameInfo{
		cs.entryPoint(curf),
		fmt.Sprintf("$%04X", pc),
	})
}

func (callStack) entryPoint(f *stackFrame) string {
	if f == nil {
		return "[bottom of stack]"
	}

	str := fmt.Sprintf("%04X", f.target)
	if f.flag == sffRST {
		return "[rst] $" + str
	}
	return str
}
