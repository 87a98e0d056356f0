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
	"testing"
)

func spillRegFor(fn *ir.Function) *ir.Reg {
	r := fn.NewReg()
	r.Spill = true
	r.RealNum = -1
	slot := ir.NewVar("spill", ir.IntType, ir.Local)
	slot.IsSpillSlot = true
	fn.AddLocal(slot)
	r.SpillVar = slot
	return r
}

func TestMaterializeSpillsInsertsLoadBeforeRead(t *testing.T) {
	fn := ir.NewFunction("f", ir.IntType)
	bb := fn.NewBB()
	spilled := spillRegFor(fn)
	dst := fn.NewReg()
	add := bb.Emit(ir.ADD)
	add.R0, add.R1, add.R2 = dst, dst, spilled

	MaterializeSpills(fn)

	if len(bb.Instrs) != 2 {
		t.Fatalf("got %d instructions, want 2 (LOAD_SPILL + ADD)", len(bb.Instrs))
	}
	load := bb.Instrs[0]
	if load.Op != ir.LOAD_SPILL || load.Var != spilled.SpillVar {
		t.Errorf("expected a leading LOAD_SPILL from the spill slot, got %v", load)
	}
	rewritten := bb.Instrs[1]
	if rewritten.R2 == spilled {
		t.Error("ADD's spilled operand should be redirected to the staged register, not left as the original")
	}
	if rewritten.R2.RealNum != StagingReg0 && rewritten.R2.RealNum != StagingReg1 {
		t.Errorf("got staged operand physical slot %d, want a staging slot", rewritten.R2.RealNum)
	}
}

func TestMaterializeSpillsInsertsStoreAfterWrite(t *testing.T) {
	fn := ir.NewFunction("f", ir.IntType)
	bb := fn.NewBB()
	spilled := spillRegFor(fn)
	imm := bb.Emit(ir.IMM)
	imm.R0 = spilled
	imm.Imm = 7

	MaterializeSpills(fn)

	if len(bb.Instrs) != 2 {
		t.Fatalf("got %d instructions, want 2 (IMM + STORE_SPILL)", len(bb.Instrs))
	}
	rewritten := bb.Instrs[0]
	if rewritten.R0.RealNum != StagingReg0 {
		t.Errorf("IMM's spilled destination should be redirected to StagingReg0, got physical slot %d", rewritten.R0.RealNum)
	}
	store := bb.Instrs[1]
	if store.Op != ir.STORE_SPILL || store.Var != spilled.SpillVar {
		t.Errorf("expected a trailing STORE_SPILL to the spill slot, got %v", store)
	}
}

func TestMaterializeSpillsUsesTwoDistinctStagingRegsForTwoOperands(t *testing.T) {
	fn := ir.NewFunction("f", ir.IntType)
	bb := fn.NewBB()
	a := spillRegFor(fn)
	b := spillRegFor(fn)
	dst := fn.NewReg()
	add := bb.Emit(ir.ADD)
	add.R0, add.R1, add.R2 = dst, a, b

	MaterializeSpills(fn)

	if len(bb.Instrs) != 3 {
		t.Fatalf("got %d instructions, want 3 (two LOAD_SPILL + ADD)", len(bb.Instrs))
	}
	got1 := bb.Instrs[2].R1.RealNum
	got2 := bb.Instrs[2].R2.RealNum
	if got1 == got2 {
		t.Errorf("two simultaneously-spilled operands must land in distinct staging registers, both got %d", got1)
	}
}
