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

import (
	"cc89/utils"
	"fmt"
)

// BB is a basic block: a maximal run of instructions entered only at the
// top, left only at the bottom. Succ/pred are derived relations wired by the
// lowering stage as it emits each JMP/BR, not owning pointers. Def/In/Out
// are register sets used by liveness propagation.
type BB struct {
	Id     int
	Instrs []*Instr
	Param  *Reg // block-parameter register, the phi-less SSA merge point (§4.1)

	Succs []*BB
	Preds []*BB

	Defs *utils.Set[*Reg]
	In   *utils.Set[*Reg]
	Out  *utils.Set[*Reg]
}

func newBB(id int) *BB {
	return &BB{
		Id:   id,
		Defs: utils.NewSet[*Reg](),
		In:   utils.NewSet[*Reg](),
		Out:  utils.NewSet[*Reg](),
	}
}

// Emit appends a new, mostly-empty instruction to the block and returns it
// for the caller to fill in, mirroring the teacher's block.NewValue pattern.
func (bb *BB) Emit(op Op) *Instr {
	instr := &Instr{Op: op}
	bb.Instrs = append(bb.Instrs, instr)
	return instr
}

func (bb *BB) WireTo(to *BB) {
	bb.Succs = append(bb.Succs, to)
	to.Preds = append(to.Preds, bb)
}

// Terminator returns the block's control-flow instruction, which spec §3
// invariant 2 requires to be the last instruction and exactly one of
// JMP/BR/RETURN.
func (bb *BB) Terminator() *Instr {
	utils.Assert(len(bb.Instrs) > 0, "block b%d has no instructions", bb.Id)
	last := bb.Instrs[len(bb.Instrs)-1]
	utils.Assert(last.Op.IsTerminator(), "block b%d does not end with a terminator", bb.Id)
	return last
}

func (bb *BB) String() string {
	s := fmt.Sprintf("b%d:", bb.Id)
	if bb.Param != nil {
		s += fmt.Sprintf(" (%v)", bb.Param)
	}
	s += "\n"
	for _, instr := range bb.Instrs {
		s += fmt.Sprintf("  %v\n", instr)
	}
	return s
}
