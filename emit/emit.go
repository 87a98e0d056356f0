// Copyright (c) 2024 The cc89 Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package emit

import (
	"cc89/ir"
	"cc89/utils"
	"fmt"
)

// calleeSaved is the subset of the 7-register file the SysV ABI requires a
// callee to preserve; cc89 always pushes/pops all five unconditionally
// rather than tracking per-function usage, trading a few bytes of redundant
// stack traffic for a much simpler prologue/epilogue (Open Question
// resolution, see DESIGN.md).
var calleeSaved = []int{2, 3, 4, 5, 6} // rbx, r12, r13, r14, r15

// Emitter walks an allocated, two-address cc89 IR program and prints x86-64
// GAS assembly in Intel syntax, grounded on the teacher's codegen.Assembler
// buffered-string style (one method per mnemonic, a per-instruction comment).
type Emitter struct {
	sb        *utils.StringBuilder
	fn        *ir.Function
	labelBase string
	retLabel  string
}

// Emit lowers every function and global of prog to a complete assembly
// listing. Every function must already have been through regalloc.Allocate
// and regalloc.MaterializeSpills.
func Emit(prog *ir.Program) string {
	sb := utils.NewStringBuilder()
	sb.WriteString(".intel_syntax noprefix\n")
	emitGlobals(sb, prog)
	sb.WriteString("  .text\n")
	for _, fn := range prog.Functions {
		e := &Emitter{sb: utils.NewStringBuilder(), fn: fn, labelBase: fn.Name, retLabel: ".L" + fn.Name + "_ret"}
		e.emitFunction()
		sb.WriteString(e.sb.String())
	}
	return sb.String()
}

func emitGlobals(sb *utils.StringBuilder, prog *ir.Program) {
	var data, bss []*ir.Var
	for _, v := range prog.Globals {
		if v.HasInit {
			data = append(data, v)
		} else {
			bss = append(bss, v)
		}
	}
	if len(data) > 0 {
		sb.WriteString("  .data\n")
		for _, v := range data {
			sb.Printf("%s:\n", v.Name)
			sb.WriteString("  .byte ")
			for i, b := range v.Init {
				if i > 0 {
					sb.WriteByte(',')
				}
				sb.Printf("%d", b)
			}
			sb.WriteString("\n")
		}
	}
	if len(bss) > 0 {
		sb.WriteString("  .bss\n")
		for _, v := range bss {
			sb.Printf("%s:\n  .zero %d\n", v.Name, v.Type.Size())
		}
	}
}

func (e *Emitter) comment(s string) { e.sb.Printf("  # %s\n", s) }

func (e *Emitter) line(format string, args ...interface{}) {
	e.sb.Printf("  "+format+"\n", args...)
}

func (e *Emitter) label(s string) { e.sb.Printf("%s:\n", s) }

func (e *Emitter) bbLabel(bb *ir.BB) string { return fmt.Sprintf(".L%s_b%d", e.labelBase, bb.Id) }

// emitFunction lays out the stack frame, prints the prologue, every block in
// order, and a single shared epilogue that every RETURN jumps to.
func (e *Emitter) emitFunction() {
	frameSize := layoutFrame(e.fn)

	e.sb.Printf("  .globl %s\n", e.fn.Name)
	e.label(e.fn.Name)
	e.comment("prologue")
	e.line("push rbp")
	e.line("mov rbp, rsp")
	if frameSize > 0 {
		e.line("sub rsp, %d", frameSize)
	}
	for _, phys := range calleeSaved {
		e.line("push %s", regName(phys, 8))
	}

	for _, bb := range e.fn.BBs {
		e.label(e.bbLabel(bb))
		for _, instr := range bb.Instrs {
			e.emitInstr(bb, instr)
		}
	}

	e.label(e.retLabel)
	e.comment("epilogue")
	for i := len(calleeSaved) - 1; i >= 0; i-- {
		e.line("pop %s", regName(calleeSaved[i], 8))
	}
	if frameSize > 0 {
		e.line("add rsp, %d", frameSize)
	}
	e.line("pop rbp")
	e.line("ret")
}

// layoutFrame assigns a negative rbp-relative Offset to every local and
// parameter that scalar replacement did not promote away, plus every spill
// slot regalloc.Allocate created, and returns the 16-byte-aligned total
// frame size (spec §4.6).
func layoutFrame(fn *ir.Function) int {
	offset := 0
	assign := func(v *ir.Var) {
		if v.Promoted != nil || v.Type.IsVoid() {
			return
		}
		offset = utils.AlignUp(offset+v.Type.Size(), v.Type.Align())
		v.Offset = offset
	}
	for _, p := range fn.Params {
		assign(p)
	}
	for _, l := range fn.Locals {
		assign(l)
	}
	return utils.Align16(offset)
}

func reg(r *ir.Reg, size int) string {
	if r == nil {
		return ""
	}
	return regName(r.RealNum, size)
}

func memOf(v *ir.Var) string { return fmt.Sprintf("[rbp - %d]", v.Offset) }

func (e *Emitter) emitInstr(bb *ir.BB, i *ir.Instr) {
	switch i.Op {
	case ir.NOP:
		return
	case ir.IMM:
		e.line("mov %s, %d", reg(i.R0, 8), i.Imm)
	case ir.BPREL:
		e.line("lea %s, %s", reg(i.R0, 8), memOf(i.Var))
	case ir.LABEL_ADDR:
		e.line("lea %s, [rip + %s]", reg(i.R0, 8), i.Var.Name)
	case ir.MOV:
		e.line("mov %s, %s", reg(i.R0, 8), reg(i.R2, 8))
	case ir.LOAD:
		e.emitLoad(i)
	case ir.STORE:
		e.line("mov %s %s, %s", ptrSizeKeyword(i.Size), addrFromReg(i.R1), reg(i.R2, i.Size))
	case ir.STORE_ARG:
		if int(i.Imm) < len(argRegs) {
			e.line("mov %s, %s", reg(i.R0, 8), argRegs[i.Imm])
		} else {
			// beyond the register-passed args; spec caps calls at 6, so a
			// function is never itself declared with more than 6 params.
			e.comment("unsupported: argument index beyond register file")
		}
	case ir.LOAD_SPILL:
		e.line("mov %s, %s %s", reg(i.R0, 8), ptrSizeKeyword(8), memOf(i.Var))
	case ir.STORE_SPILL:
		e.line("mov %s %s, %s", ptrSizeKeyword(8), memOf(i.Var), reg(i.R0, 8))
	case ir.ADD:
		e.line("add %s, %s", reg(i.R0, 8), reg(i.R2, 8))
	case ir.SUB:
		e.line("sub %s, %s", reg(i.R0, 8), reg(i.R2, 8))
	case ir.MUL:
		e.line("imul %s, %s", reg(i.R0, 8), reg(i.R2, 8))
	case ir.DIV:
		e.emitDivMod(i, false)
	case ir.MOD:
		e.emitDivMod(i, true)
	case ir.AND:
		e.line("and %s, %s", reg(i.R0, 8), reg(i.R2, 8))
	case ir.OR:
		e.line("or %s, %s", reg(i.R0, 8), reg(i.R2, 8))
	case ir.XOR:
		e.line("xor %s, %s", reg(i.R0, 8), reg(i.R2, 8))
	case ir.SHL:
		e.emitShift(i, "sal")
	case ir.SHR:
		e.emitShift(i, "sar")
	case ir.EQ:
		e.emitCompare(i, "sete")
	case ir.NE:
		e.emitCompare(i, "setne")
	case ir.LT:
		e.emitCompare(i, "setl")
	case ir.LE:
		e.emitCompare(i, "setle")
	case ir.JMP:
		if i.BBArg != nil && i.BB1.Param != nil {
			e.line("mov %s, %s", reg(i.BB1.Param, 8), reg(i.BBArg, 8))
		}
		e.line("jmp %s", e.bbLabel(i.BB1))
	case ir.BR:
		e.line("cmp %s, 0", reg(i.R2, 8))
		e.line("jne %s", e.bbLabel(i.BB1))
		e.line("jmp %s", e.bbLabel(i.BB2))
	case ir.CALL:
		e.emitCall(i)
	case ir.RETURN:
		if i.R2 != nil {
			e.line("mov rax, %s", reg(i.R2, 8))
		}
		e.line("jmp %s", e.retLabel)
	default:
		e.comment(fmt.Sprintf("unhandled opcode %v", i.Op))
	}
}

// addrFromReg renders a base register holding a computed address as a bare
// Intel memory operand; used by STORE, whose R1 always carries an address
// value produced by an earlier BPREL/LABEL_ADDR/ADD chain, never a Var.
func addrFromReg(r *ir.Reg) string { return fmt.Sprintf("[%s]", reg(r, 8)) }

func (e *Emitter) emitLoad(i *ir.Instr) {
	dst := reg(i.R0, 8)
	addr := addrFromReg(i.R2)
	switch i.Size {
	case 1:
		e.line("movzx %s, BYTE PTR %s", dst, addr)
	case 4:
		e.line("mov %s, DWORD PTR %s", reg(i.R0, 4), addr)
	default:
		e.line("mov %s, QWORD PTR %s", dst, addr)
	}
}

// emitDivMod implements signed division via the rax:rdx convention (spec
// §4.6): sign-extend rax into rdx:rax with cqo, idiv the divisor, then
// collect the quotient (rax) or remainder (rdx) into the destination.
func (e *Emitter) emitDivMod(i *ir.Instr, wantRemainder bool) {
	e.line("mov rax, %s", reg(i.R0, 8))
	e.line("cqo")
	e.line("idiv %s", reg(i.R2, 8))
	if wantRemainder {
		e.line("mov %s, rdx", reg(i.R0, 8))
	} else {
		e.line("mov %s, rax", reg(i.R0, 8))
	}
}

// emitShift moves the shift count into cl, the only encoding x86 allows for
// a variable shift amount.
func (e *Emitter) emitShift(i *ir.Instr, mnemonic string) {
	e.line("mov rcx, %s", reg(i.R2, 8))
	e.line("%s %s, cl", mnemonic, reg(i.R0, 8))
}

// emitCompare computes a 0/1 boolean: cmp, setcc into the low byte of the
// destination, then zero-extend the rest of the register.
func (e *Emitter) emitCompare(i *ir.Instr, setcc string) {
	e.line("cmp %s, %s", reg(i.R0, 8), reg(i.R2, 8))
	e.line("%s %s", setcc, reg(i.R0, 1))
	e.line("movzx %s, %s", reg(i.R0, 8), reg(i.R0, 1))
}

// emitCall marshals up to six integer/pointer arguments into the SysV ABI
// registers, saves r10/r11 unconditionally, zeros rax (the variadic
// convention's vector-register count), and restores r10/r11 after the
// call: both are
// in the allocatable register file but are caller-saved, so a callee is
// free to clobber them even though the allocator may still have a live
// value parked in one.
func (e *Emitter) emitCall(i *ir.Instr) {
	for idx, arg := range i.Args {
		e.line("mov %s, %s", argRegs[idx], reg(arg, 8))
	}
	e.line("push %s", regName(0, 8))
	e.line("push %s", regName(1, 8))
	e.line("mov rax, 0")
	e.line("call %s", i.Call)
	e.line("pop %s", regName(1, 8))
	e.line("pop %s", regName(0, 8))
	if i.R0 != nil {
		e.line("mov %s, rax", reg(i.R0, 8))
	}
}
