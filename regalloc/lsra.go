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

import (
	"cc89/ir"
	"sort"
)

// NumRegs is the size of the named register file: r10, r11, rbx, r12, r13,
// r14, r15. NumStaging of those are held back from ordinary allocation as
// scratch space the spill-materialization pass uses to stage a spilled
// operand in and out of memory; the remaining NumRegs-NumStaging are handed
// out by the allocator below. Two staging registers (not one) are reserved
// because a single two-address instruction can reference two distinct
// spilled virtual registers at once (its fused dst/src1, and its src2).
const (
	NumRegs    = 7
	NumStaging = 2
	NumUsable  = NumRegs - NumStaging
)

// RegNames gives the size-8 (quadword) name of each physical register
// index; package emit keeps its own table of the size-8/4/1 forms, indexed
// the same way.
var RegNames = [NumRegs]string{"r10", "r11", "rbx", "r12", "r13", "r14", "r15"}

// StagingReg0 and StagingReg1 are the two indices reserved for spill
// materialization (never handed out by Allocate).
const (
	StagingReg0 = NumUsable
	StagingReg1 = NumUsable + 1
)

// Allocator performs spec §4.5's single-pass linear scan: a forward walk
// over registers ordered by definition point, tracking which physical
// registers are currently occupied and spilling whichever live value has
// the furthest remaining use when none are free.
type Allocator struct {
	fn        *ir.Function
	order     []*ir.Reg        // all registers, indexed by Def ascending
	paramRegs map[*ir.Reg]bool // block-parameter registers, never chosen as spill victims
}

// active is one entry of the allocator's occupancy list.
type active struct {
	reg     *ir.Reg
	physReg int
}

// Allocate assigns RealNum to every register in fn (or marks it Spill),
// creating backing spill slots as needed, and appends them to fn.Locals.
func Allocate(fn *ir.Function) {
	a := &Allocator{fn: fn, paramRegs: map[*ir.Reg]bool{}}
	a.collectDefUse()
	a.scan()
}

// collectDefUse performs the setup walk: a single linear pass over every
// instruction in layout order assigning each one a position, from which
// every register's Def (first write) and LastUse (last read, or last
// redefinition for a two-address-fused register) are derived. LastUse is
// then raised to the end of every block whose liveness Out set holds the
// register.
func (a *Allocator) collectDefUse() {
	seen := map[*ir.Reg]bool{}
	pos := 1
	touch := func(r *ir.Reg, isDef bool) {
		if r == nil {
			return
		}
		if isDef && !seen[r] {
			r.Def = pos
			r.LastUse = pos
			seen[r] = true
			a.order = append(a.order, r)
			return
		}
		if pos > r.LastUse {
			r.LastUse = pos
		}
	}
	for _, bb := range a.fn.BBs {
		if bb.Param != nil {
			touch(bb.Param, true)
			a.paramRegs[bb.Param] = true
		}
		for _, instr := range bb.Instrs {
			for _, r := range instr.Operands() {
				touch(r, false)
			}
			if instr.R0 != nil {
				touch(instr.R0, true)
				touch(instr.R0, false) // a two-address redefinition also counts as a use
			}
			pos++
		}
		// A register live out of this block (e.g. around a loop's back edge)
		// stays occupied through the block's last instruction.
		if bb.Out != nil {
			bb.Out.ForEach(func(r *ir.Reg) {
				if pos-1 > r.LastUse {
					r.LastUse = pos - 1
				}
			})
		}
	}
	sort.SliceStable(a.order, func(i, j int) bool { return a.order[i].Def < a.order[j].Def })
}

func (a *Allocator) scan() {
	var actives []*active
	free := make([]int, NumUsable)
	for i := range free {
		free[i] = NumUsable - 1 - i // pop from the tail; order is cosmetic only
	}

	popFree := func() int {
		r := free[len(free)-1]
		free = free[:len(free)-1]
		return r
	}
	pushFree := func(p int) { free = append(free, p) }

	expire := func(pos int) {
		kept := actives[:0]
		for _, act := range actives {
			if act.reg.LastUse < pos {
				pushFree(act.physReg)
			} else {
				kept = append(kept, act)
			}
		}
		actives = kept
	}

	for _, r := range a.order {
		expire(r.Def)

		if len(free) > 0 {
			p := popFree()
			r.RealNum = p
			actives = append(actives, &active{r, p})
			continue
		}

		// No free register: spill whichever of r or an active register has
		// the furthest last use (spec §4.5 "furthest last-use" heuristic).
		// Block-parameter registers are never chosen as victims: a JMP carries
		// its argument into the target's Param by a direct register move, and
		// that move has nowhere to go once Param no longer names a physical
		// register.
		victimIdx := -1
		furthest := r.LastUse
		for i, act := range actives {
			if a.paramRegs[act.reg] {
				continue
			}
			if act.reg.LastUse > furthest {
				furthest = act.reg.LastUse
				victimIdx = i
			}
		}
		if victimIdx == -1 {
			a.spill(r)
			continue
		}
		victim := actives[victimIdx]
		a.spill(victim.reg)
		r.RealNum = victim.physReg
		actives[victimIdx] = &active{r, victim.physReg}
	}
}

func (a *Allocator) spill(r *ir.Reg) {
	r.Spill = true
	r.RealNum = -1
	slot := ir.NewVar(spillSlotName(r), spillSlotType(r), ir.Local)
	slot.IsSpillSlot = true
	a.fn.AddLocal(slot)
	r.SpillVar = slot
}

func spillSlotName(r *ir.Reg) string {
	return "%spill" + itoa(r.Id)
}

// spillSlotType backs every spill slot with an 8-byte pointer-sized cell:
// the emitter always moves a full quadword for LOAD_SPILL/STORE_SPILL,
// whatever the width of the value being staged.
func spillSlotType(r *ir.Reg) *ir.Type { return ir.PtrTo(ir.IntType) }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
