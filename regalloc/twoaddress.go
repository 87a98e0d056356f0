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

// Package regalloc implements spec §4.4 (two-address rewrite) and §4.5
// (linear-scan allocation). x86 arithmetic instructions read one operand
// and overwrite it; the three-address IR that lowering/opt produce has to
// be narrowed to that shape before an x86 register can stand in for a
// virtual one.
package regalloc

import "cc89/ir"

// RewriteTwoAddress splices a MOV ahead of every arithmetic/compare
// instruction so its destination and first source become the same virtual
// register, matching the read-modify-write shape x86 ADD/SUB/IMUL/CMP
// instructions require. From this point on a register may legitimately be
// written more than once (by the MOV, then again in place by the op it
// feeds) — the allocator that follows treats registers as storage
// locations, not SSA values, so multiply-defined registers (already
// possible after scalar replacement aliases a local onto one mutable
// register) are nothing new by this point in the pipeline.
func RewriteTwoAddress(fn *ir.Function) {
	for _, bb := range fn.BBs {
		rewritten := make([]*ir.Instr, 0, len(bb.Instrs))
		for _, instr := range bb.Instrs {
			if (instr.Op.IsArith() || instr.Op.IsCompare()) && instr.R1 != nil {
				mov := &ir.Instr{Op: ir.MOV, R0: instr.R0, R2: instr.R1}
				rewritten = append(rewritten, mov)
				instr.R1 = instr.R0
			}
			rewritten = append(rewritten, instr)
		}
		bb.Instrs = rewritten
	}
}
