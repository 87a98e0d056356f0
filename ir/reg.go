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

import "fmt"

// Reg is a virtual register. Exactly one instruction defines it (spec §3
// invariant 1); the allocator fills RealNum in [0, numRegs-1] once it runs.
// Def/LastUse are instruction positions set by the allocator's setup walk
// (§4.5); a Reg with Def == 0 after collection is live-in at the function's
// entry and is given a dummy zero-definition by liveness (§4.3 step 4).
type Reg struct {
	Id       int
	Def      int
	LastUse  int
	RealNum  int
	Spill    bool
	SpillVar *Var // backing stack slot, set once this register is spilled
	Promoted *Reg // alias target set by scalar replacement (§4.2)
}

func newReg(id int) *Reg {
	return &Reg{Id: id, RealNum: -1}
}

func (r *Reg) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("r%d", r.Id)
}
