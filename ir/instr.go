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

// Instr is a single three-address IR instruction. Individual fields are
// rewritten in place by later passes (opcode change, operand change, NOP),
// never replaced wholesale, so passes can hold a *Instr across rewrites.
type Instr struct {
	Op Op

	R0, R1, R2 *Reg

	Imm int64
	Var *Var

	BB1, BB2 *BB // successors for JMP (BB1 only)/BR(both)

	Size int // memory width in bytes, for LOAD/STORE/STORE_ARG (*_SPILL always moves 8)

	Call string
	Args []*Reg // up to six CALL argument registers

	BBArg *Reg // value carried into BB1's block parameter by a JMP
}

func (i *Instr) String() string {
	switch i.Op {
	case IMM:
		return fmt.Sprintf("%v = IMM %d", i.R0, i.Imm)
	case BPREL:
		return fmt.Sprintf("%v = BPREL %s", i.R0, i.Var.Name)
	case LABEL_ADDR:
		return fmt.Sprintf("%v = LABEL_ADDR %s", i.R0, i.Var.Name)
	case MOV:
		return fmt.Sprintf("%v = MOV %v", i.R0, i.R2)
	case LOAD:
		return fmt.Sprintf("%v = LOAD [%v] (%d)", i.R0, i.R2, i.Size)
	case STORE:
		return fmt.Sprintf("STORE [%v] <- %v (%d)", i.R1, i.R2, i.Size)
	case STORE_ARG:
		return fmt.Sprintf("%v = STORE_ARG arg%d (%d)", i.R0, i.Imm, i.Size)
	case LOAD_SPILL:
		return fmt.Sprintf("%v = LOAD_SPILL %s", i.R0, i.Var.Name)
	case STORE_SPILL:
		return fmt.Sprintf("STORE_SPILL %s <- %v", i.Var.Name, i.R0)
	case JMP:
		if i.BBArg != nil {
			return fmt.Sprintf("JMP b%d(%v)", i.BB1.Id, i.BBArg)
		}
		return fmt.Sprintf("JMP b%d", i.BB1.Id)
	case BR:
		return fmt.Sprintf("BR %v ? b%d : b%d", i.R2, i.BB1.Id, i.BB2.Id)
	case CALL:
		return fmt.Sprintf("%v = CALL %s%v", i.R0, i.Call, i.Args)
	case RETURN:
		return fmt.Sprintf("RETURN %v", i.R2)
	case NOP:
		return "NOP"
	default:
		return fmt.Sprintf("%v = %v %v, %v", i.R0, i.Op, i.R1, i.R2)
	}
}

// Operands returns every register read by this instruction (not R0, the
// definition), in the order liveness and the allocator must visit them:
// R1, R2, BBArg, then CALL arguments.
func (i *Instr) Operands() []*Reg {
	var ops []*Reg
	if i.R1 != nil {
		ops = append(ops, i.R1)
	}
	if i.R2 != nil {
		ops = append(ops, i.R2)
	}
	if i.BBArg != nil {
		ops = append(ops, i.BBArg)
	}
	ops = append(ops, i.Args...)
	return ops
}
