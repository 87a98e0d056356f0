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

// buildPressuredFunction returns a single block whose Param plus
// NumUsable freshly-defined registers are all kept alive by a trailing CALL
// that reads every one of them as an argument -- one more simultaneously
// live register than the allocator has physical slots for.
func buildPressuredFunction() (*ir.Function, *ir.Reg) {
	fn := ir.NewFunction("f", ir.IntType)
	bb := fn.NewBB()
	param := fn.NewReg()
	bb.Param = param

	regs := make([]*ir.Reg, NumUsable)
	for i := range regs {
		r := fn.NewReg()
		regs[i] = r
		instr := bb.Emit(ir.IMM)
		instr.R0 = r
		instr.Imm = int64(i)
	}

	call := bb.Emit(ir.CALL)
	call.Call = "sink"
	call.Args = append([]*ir.Reg{param}, regs...)

	ret := bb.Emit(ir.RETURN)
	ret.R2 = param
	return fn, param
}

func TestAllocateNeverSpillsBlockParam(t *testing.T) {
	fn, param := buildPressuredFunction()
	Allocate(fn)

	if param.Spill {
		t.Error("block-parameter register must never be chosen as a spill victim")
	}
	if param.RealNum < 0 || param.RealNum >= NumUsable {
		t.Errorf("got param.RealNum = %d, want a usable physical slot in [0, %d)", param.RealNum, NumUsable)
	}
}

func TestAllocateSpillsUnderPressure(t *testing.T) {
	fn, _ := buildPressuredFunction()
	Allocate(fn)

	spilled := 0
	for _, v := range fn.Locals {
		if v.IsSpillSlot {
			spilled++
		}
	}
	if spilled == 0 {
		t.Error("expected at least one spill slot: more registers are simultaneously live than NumUsable")
	}
}

func TestAllocateFitsWithoutSpillingUnderCapacity(t *testing.T) {
	fn := ir.NewFunction("f", ir.IntType)
	bb := fn.NewBB()
	r1, r2 := fn.NewReg(), fn.NewReg()
	i1 := bb.Emit(ir.IMM)
	i1.R0 = r1
	i2 := bb.Emit(ir.IMM)
	i2.R0 = r2
	add := bb.Emit(ir.ADD)
	add.R0, add.R1, add.R2 = r1, r1, r2
	ret := bb.Emit(ir.RETURN)
	ret.R2 = r1

	Allocate(fn)

	if r1.Spill || r2.Spill {
		t.Error("two live registers should fit in NumUsable physical slots without spilling")
	}
}
