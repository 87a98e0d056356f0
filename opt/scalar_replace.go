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

// Package opt implements spec §4.2's scalar replacement: aliasing a
// stack-resident int local straight onto a single virtual register for
// the lifetime of the function whenever it is never address-taken, without
// rebuilding classical phi SSA. Every BPREL of the local is NOPed and its
// address register aliased to the local's promoted register; every LOAD or
// STORE reached through that address register collapses to a plain MOV
// against the promoted register. Unlike phi-based mem2reg this does not
// require a single dominating store — the promoted register is an ordinary
// mutable register, written and read exactly as the stack slot would have
// been, so ordinary loop counters and accumulators (many stores, many
// loads, across many blocks) promote just as readily as write-once locals.
package opt

import "cc89/ir"

type Optimizer struct {
	fn *ir.Function
}

// Run performs scalar replacement on fn in place.
func Run(fn *ir.Function) {
	opt := &Optimizer{fn: fn}
	for _, v := range fn.Locals {
		opt.tryPromote(v)
	}
}

func (opt *Optimizer) tryPromote(v *ir.Var) {
	if v.AddressTaken || !v.Type.IsInt() || v.IsSpillSlot {
		return
	}

	var bprels []*ir.Instr
	for _, bb := range opt.fn.BBs {
		for _, instr := range bb.Instrs {
			if instr.Op == ir.BPREL && instr.Var == v {
				bprels = append(bprels, instr)
			}
		}
	}
	if len(bprels) == 0 {
		return
	}
	addrRegs := make(map[*ir.Reg]bool, len(bprels))
	for _, instr := range bprels {
		addrRegs[instr.R0] = true
	}

	promoted := opt.fn.NewReg()
	v.Promoted = promoted
	for _, instr := range bprels {
		instr.R0.Promoted = promoted
		nop(instr)
	}

	for _, bb := range opt.fn.BBs {
		for _, instr := range bb.Instrs {
			switch {
			case instr.Op == ir.STORE && addrRegs[instr.R1]:
				value := instr.R2
				instr.Op = ir.MOV
				instr.R0, instr.R1, instr.R2 = promoted, nil, value
			case instr.Op == ir.LOAD && addrRegs[instr.R2]:
				instr.Op = ir.MOV
				instr.R2 = promoted
			}
		}
	}
}

func nop(instr *ir.Instr) {
	instr.Op = ir.NOP
	instr.R0, instr.R1, instr.R2 = nil, nil, nil
	instr.BBArg = nil
	instr.Args = nil
}
