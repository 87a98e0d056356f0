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
package ir

import "cc89/utils"

// Function owns its basic blocks; a block owns its instructions;
// instructions reference Regs and Vars owned by the Function (or the
// Program, for globals). The entry block is always BBs[0].
type Function struct {
	Name    string
	RetType *Type
	Params  []*Var
	Locals  []*Var
	BBs     []*BB

	nextRegId int
	nextBBId  int
}

func NewFunction(name string, ret *Type) *Function {
	return &Function{Name: name, RetType: ret}
}

func (fn *Function) NewReg() *Reg {
	fn.nextRegId++
	return newReg(fn.nextRegId)
}

func (fn *Function) NewBB() *BB {
	bb := newBB(fn.nextBBId)
	fn.nextBBId++
	fn.BBs = append(fn.BBs, bb)
	return bb
}

func (fn *Function) Entry() *BB {
	utils.Assert(len(fn.BBs) > 0, "function %s has no blocks", fn.Name)
	return fn.BBs[0]
}

// AddLocal registers a new local variable (including a spill slot, added by
// the allocator after all other locals exist).
func (fn *Function) AddLocal(v *Var) {
	fn.Locals = append(fn.Locals, v)
}

func (fn *Function) String() string {
	s := "func " + fn.Name + ":\n"
	for _, bb := range fn.BBs {
		s += bb.String()
	}
	return s
}
