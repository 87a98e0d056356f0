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
package regalloc

import "cc89/ir"

// MaterializeSpills rewrites every instruction that reads or writes a
// register Allocate marked Spill into an explicit LOAD_SPILL/STORE_SPILL
// sequence around a staging register, run strictly after Allocate and
// before emit walks the function. A read of a spilled register becomes a
// LOAD_SPILL into a staging register immediately before the instruction
// that reads it; a write to a spilled register becomes a STORE_SPILL
// immediately after the instruction that defines it, with the instruction
// itself redirected to write the staging register instead.
//
// Two staging registers, not one, are reserved (StagingReg0/StagingReg1)
// because a two-address instruction (after RewriteTwoAddress) can read two
// distinct spilled registers at once: its fused R1 and its R2.
func MaterializeSpills(fn *ir.Function) {
	for _, bb := range fn.BBs {
		rewritten := make([]*ir.Instr, 0, len(bb.Instrs))
		for _, instr := range bb.Instrs {
			staging := 0
			readStaged := func(r *ir.Reg) *ir.Reg {
				if r == nil || !r.Spill {
					return r
				}
				phys := stagingSlot(staging)
				staging++
				ld := loadSpillOf(r, phys)
				rewritten = append(rewritten, ld)
				return stagingVirtual(r, phys)
			}

			instr.R1 = readStaged(instr.R1)
			instr.R2 = readStaged(instr.R2)
			instr.BBArg = readStaged(instr.BBArg)
			for i, a := range instr.Args {
				instr.Args[i] = readStaged(a)
			}

			def := instr.R0
			if def != nil && def.Spill {
				instr.R0 = stagingVirtual(def, StagingReg0)
			}
			rewritten = append(rewritten, instr)
			if def != nil && def.Spill {
				rewritten = append(rewritten, storeSpillOf(def, StagingReg0))
			}
		}
		bb.Instrs = rewritten
	}
}

func stagingSlot(i int) int {
	if i == 0 {
		return StagingReg0
	}
	return StagingReg1
}

// stagingVirtual returns a throwaway virtual register pinned to the given
// physical staging slot, so the rest of the pipeline (which addresses
// registers by RealNum, never by identity, once allocation has run) sees an
// ordinary allocated register.
func stagingVirtual(original *ir.Reg, phys int) *ir.Reg {
	return &ir.Reg{Id: original.Id, RealNum: phys}
}

func loadSpillOf(r *ir.Reg, phys int) *ir.Instr {
	return &ir.Instr{Op: ir.LOAD_SPILL, R0: stagingVirtual(r, phys), Var: r.SpillVar}
}

func storeSpillOf(r *ir.Reg, phys int) *ir.Instr {
	return &ir.Instr{Op: ir.STORE_SPILL, R0: stagingVirtual(r, phys), Var: r.SpillVar}
}
