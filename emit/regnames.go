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

// Package emit implements spec §4.6: walking the allocated, two-address IR
// and printing x86-64 GAS assembly in Intel syntax. Grounded on the
// teacher's codegen/asm_x86.go Assembler (buffered string, one helper method
// per mnemonic, per-instruction comment), adapted from AT&T operand order
// (src, dst) to Intel order (dst, src) and from the teacher's Register/IOperand
// abstraction to cc89's allocator output (regalloc.Allocator assigns every
// *ir.Reg a RealNum into regalloc.RegNames).
package emit

import "cc89/regalloc"

// sizedNames gives, for each physical register index, its 8/4/1-byte name.
// 2-byte (word) operands never appear in cc89's type system (only char/int/
// pointer), so no word-width row is needed.
var sizedNames = [regalloc.NumRegs][3]string{
	{"r10", "r10d", "r10b"},
	{"r11", "r11d", "r11b"},
	{"rbx", "ebx", "bl"},
	{"r12", "r12d", "r12b"},
	{"r13", "r13d", "r13b"},
	{"r14", "r14d", "r14b"},
	{"r15", "r15d", "r15b"},
}

// regName returns the name of the size-byte form of physical register phys.
// size other than 1 or 4 is treated as 8 (pointers and the frame pointer
// math that never narrows).
func regName(phys int, size int) string {
	row := sizedNames[phys]
	switch size {
	case 1:
		return row[2]
	case 4:
		return row[1]
	default:
		return row[0]
	}
}

// argRegs is the SysV ABI integer argument-passing sequence cc89 supports
// (spec Non-goals cap calls at 6 integer/pointer arguments, no varargs, no
// floating point).
var argRegs = [6]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

func ptrSizeKeyword(size int) string {
	switch size {
	case 1:
		return "BYTE PTR"
	case 4:
		return "DWORD PTR"
	default:
		return "QWORD PTR"
	}
}
