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

// Package analyze computes the dataflow facts the allocator needs: register
// liveness, whose per-block Out sets extend register lifetimes across block
// boundaries in the allocator's setup walk. Liveness is a
// standard backward worklist over In/Out register sets, grounded on the
// teacher's BitMap-based set propagation style but phrased over
// utils.Set[*ir.Reg] since Reg identity, not a dense index, is the key.
package analyze

import (
	"cc89/ir"
	"cc89/utils"
)

// Liveness computes Defs/In/Out for every block of fn (stored directly on
// the *ir.BB values, per spec §3's data model) and propagates to a
// fixpoint.
func Liveness(fn *ir.Function) {
	use := make(map[*ir.BB]*utils.Set[*ir.Reg], len(fn.BBs))

	for _, bb := range fn.BBs {
		bb.Defs = utils.NewSet[*ir.Reg]()
		bb.In = utils.NewSet[*ir.Reg]()
		bb.Out = utils.NewSet[*ir.Reg]()
		use[bb] = utils.NewSet[*ir.Reg]()

		if bb.Param != nil {
			bb.Defs.Add(bb.Param)
		}
		for _, instr := range bb.Instrs {
			for _, r := range instr.Operands() {
				if !bb.Defs.Contains(r) {
					use[bb].Add(r)
				}
			}
			if instr.R0 != nil {
				bb.Defs.Add(instr.R0)
			}
		}
	}

	changed := true
	for changed {
		changed = false
		for _, bb := range fn.BBs {
			newOut := utils.NewSet[*ir.Reg]()
			for _, succ := range bb.Succs {
				succ.In.ForEach(func(r *ir.Reg) { newOut.Add(r) })
			}
			newIn := utils.NewSet[*ir.Reg]()
			use[bb].ForEach(func(r *ir.Reg) { newIn.Add(r) })
			newOut.ForEach(func(r *ir.Reg) {
				if !bb.Defs.Contains(r) {
					newIn.Add(r)
				}
			})
			if newIn.Length() != bb.In.Length() || newOut.Length() != bb.Out.Length() {
				changed = true
			}
			bb.In = newIn
			bb.Out = newOut
		}
	}

	injectDummyDefs(fn)
}

// injectDummyDefs gives every register that is live-in at the function's
// entry (used, in this buggy-input or degenerate-CFG case, before any
// definition reaches it) a synthetic zero definition, so the allocator's
// def/lastUse walk never sees an undefined register (spec §4.3 step 4).
func injectDummyDefs(fn *ir.Function) {
	entry := fn.Entry()
	var dummies []*ir.Reg
	entry.In.ForEach(func(r *ir.Reg) { dummies = append(dummies, r) })
	if len(dummies) == 0 {
		return
	}
	var prelude []*ir.Instr
	for _, r := range dummies {
		prelude = append(prelude, &ir.Instr{Op: ir.IMM, R0: r, Imm: 0})
	}
	entry.Instrs = append(prelude, entry.Instrs...)
}
