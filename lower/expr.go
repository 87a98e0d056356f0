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
package lower

import (
	"cc89/ast"
	"cc89/ir"
	"cc89/utils"
	"fmt"
)

// lowerExpr lowers e and returns the register holding its rvalue.
func (l *Lowerer) lowerExpr(e ast.AstExpr) *ir.Reg {
	switch v := e.(type) {
	case *ast.IntExpr:
		return l.emitImm(v.Value)
	case *ast.CharExpr:
		return l.emitImm(int64(v.Value))
	case *ast.StrExpr:
		return l.lowerStrLit(v)
	case *ast.VarExpr:
		return l.lowerVarRead(v)
	case *ast.UnaryExpr:
		return l.lowerUnary(v)
	case *ast.BinaryExpr:
		return l.lowerBinary(v)
	case *ast.CondExpr:
		return l.lowerCond(v)
	case *ast.CallExpr:
		return l.lowerCall(v)
	case *ast.IndexExpr:
		addr, elem := l.addressOf(v)
		return l.load(addr, elem)
	case *ast.AssignExpr:
		return l.lowerAssign(v)
	case *ast.CompoundAssignExpr:
		return l.lowerCompoundAssign(v)
	case *ast.IncDecExpr:
		return l.lowerIncDec(v)
	case *ast.CommaExpr:
		l.lowerExpr(v.Left)
		return l.lowerExpr(v.Right)
	}
	utils.Unimplement()
	return nil
}

func (l *Lowerer) load(addr *ir.Reg, t *ir.Type) *ir.Reg {
	r := l.fn.NewReg()
	instr := l.cur.Emit(ir.LOAD)
	instr.R0 = r
	instr.R2 = addr
	instr.Size = t.Size()
	return r
}

func (l *Lowerer) store(addr, val *ir.Reg, size int) {
	instr := l.cur.Emit(ir.STORE)
	instr.R1 = addr
	instr.R2 = val
	instr.Size = size
}

func (l *Lowerer) lowerStrLit(v *ast.StrExpr) *ir.Reg {
	name := fmt.Sprintf(".Lstr%d", l.strNum)
	l.strNum++
	g := ir.NewVar(name, ir.ArrayOf(ir.CharType, len(v.Value)+1), ir.Global)
	g.Init = append([]byte(v.Value), 0)
	g.HasInit = true
	l.prog.Globals = append(l.prog.Globals, g)
	r := l.fn.NewReg()
	instr := l.cur.Emit(ir.LABEL_ADDR)
	instr.R0 = r
	instr.Var = g
	return r
}

// addressOfVar returns the address register of a variable without loading
// its value, handling Global/Local storage uniformly.
func (l *Lowerer) addressOfVar(va *ir.Var) *ir.Reg {
	r := l.fn.NewReg()
	if va.Storage == ir.Global {
		instr := l.cur.Emit(ir.LABEL_ADDR)
		instr.R0 = r
		instr.Var = va
		return r
	}
	instr := l.cur.Emit(ir.BPREL)
	instr.R0 = r
	instr.Var = va
	return r
}

// lowerVarRead reads a variable's rvalue; an array-typed variable decays to
// its address rather than being loaded (spec §6.1 array-lvalue decay).
func (l *Lowerer) lowerVarRead(v *ast.VarExpr) *ir.Reg {
	if v.Var.Type.IsArray() {
		return l.addressOfVar(v.Var)
	}
	return l.load(l.addressOfVar(v.Var), v.Var.Type)
}

// addressOf computes the lvalue address of e, evaluating any side effects
// (e.g. an index expression's subscript) exactly once, and returns the
// pointee type for the caller's LOAD/STORE size.
func (l *Lowerer) addressOf(e ast.AstExpr) (*ir.Reg, *ir.Type) {
	switch v := e.(type) {
	case *ast.VarExpr:
		return l.addressOfVar(v.Var), v.Var.Type
	case *ast.UnaryExpr:
		if v.Op == ast.TK_STAR {
			addr := l.lowerExpr(v.Left)
			elem := v.Left.GetType().Base
			return addr, elem
		}
	case *ast.IndexExpr:
		baseType := v.Base.GetType()
		elem := baseType.Base
		base := l.lowerExpr(v.Base) // array decays to address, pointer loads its value
		idx := l.lowerExpr(v.Index)
		scaled := l.scale(idx, elem.Size())
		addr := l.fn.NewReg()
		instr := l.cur.Emit(ir.ADD)
		instr.R0 = addr
		instr.R1 = base
		instr.R2 = scaled
		return addr, elem
	}
	utils.Unimplement()
	return nil, nil
}

func (l *Lowerer) scale(reg *ir.Reg, size int) *ir.Reg {
	if size == 1 {
		return reg
	}
	sz := l.emitImm(int64(size))
	r := l.fn.NewReg()
	instr := l.cur.Emit(ir.MUL)
	instr.R0 = r
	instr.R1 = reg
	instr.R2 = sz
	return r
}

func (l *Lowerer) lowerUnary(v *ast.UnaryExpr) *ir.Reg {
	switch v.Op {
	case ast.TK_MINUS:
		zero := l.emitImm(0)
		val := l.lowerExpr(v.Left)
		r := l.fn.NewReg()
		instr := l.cur.Emit(ir.SUB)
		instr.R0 = r
		instr.R1 = zero
		instr.R2 = val
		return r
	case ast.TK_BANG:
		val := l.lowerExpr(v.Left)
		zero := l.emitImm(0)
		r := l.fn.NewReg()
		instr := l.cur.Emit(ir.EQ)
		instr.R0 = r
		instr.R1 = val
		instr.R2 = zero
		return r
	case ast.TK_TILDE:
		val := l.lowerExpr(v.Left)
		negOne := l.emitImm(-1)
		r := l.fn.NewReg()
		instr := l.cur.Emit(ir.XOR)
		instr.R0 = r
		instr.R1 = val
		instr.R2 = negOne
		return r
	case ast.TK_AMP:
		if ve, ok := v.Left.(*ast.VarExpr); ok {
			ve.Var.AddressTaken = true
		}
		addr, _ := l.addressOf(v.Left)
		return addr
	case ast.TK_STAR:
		addr, elem := l.addressOf(v)
		return l.load(addr, elem)
	}
	utils.Unimplement()
	return nil
}

func binOpcode(op ast.TokenKind) ir.Op {
	switch op {
	case ast.TK_PLUS:
		return ir.ADD
	case ast.TK_MINUS:
		return ir.SUB
	case ast.TK_STAR:
		return ir.MUL
	case ast.TK_SLASH:
		return ir.DIV
	case ast.TK_PERCENT:
		return ir.MOD
	case ast.TK_AMP:
		return ir.AND
	case ast.TK_PIPE:
		return ir.OR
	case ast.TK_CARET:
		return ir.XOR
	case ast.TK_SHL:
		return ir.SHL
	case ast.TK_SHR:
		return ir.SHR
	case ast.TK_EQ:
		return ir.EQ
	case ast.TK_NE:
		return ir.NE
	case ast.TK_LT:
		return ir.LT
	case ast.TK_LE:
		return ir.LE
	}
	utils.Unimplement()
	return ir.NOP
}

func (l *Lowerer) emit2(op ir.Op, a, b *ir.Reg) *ir.Reg {
	r := l.fn.NewReg()
	instr := l.cur.Emit(op)
	instr.R0 = r
	instr.R1 = a
	instr.R2 = b
	return r
}

// pointerArith returns (lhs, rhs) rescaled for pointer arithmetic: adding an
// int to a pointer scales the int by the pointee size; subtracting two
// pointers is out of scope (spec Non-goals), subtracting an int from a
// pointer scales the same way addition does. An untyped left operand (an
// operator node, see ast.Expr) is treated as an integer.
func (l *Lowerer) pointerArith(leftType *ir.Type, lhs, rhs *ir.Reg, rightIsPtr bool) (*ir.Reg, *ir.Reg) {
	if leftType != nil && (leftType.IsPtr() || leftType.IsArray()) {
		elem := leftType.Base
		if !rightIsPtr {
			return lhs, l.scale(rhs, elem.Size())
		}
	}
	return lhs, rhs
}

func (l *Lowerer) lowerBinary(v *ast.BinaryExpr) *ir.Reg {
	if v.Op == ast.TK_AND_AND || v.Op == ast.TK_OR_OR {
		return l.lowerShortCircuit(v)
	}
	lhs := l.lowerExpr(v.Left)
	rhs := l.lowerExpr(v.Right)
	lt := v.Left.GetType()
	if utils.Any(v.Op, ast.TK_PLUS, ast.TK_MINUS) {
		rightIsPtr := v.Right.GetType() != nil && (v.Right.GetType().IsPtr() || v.Right.GetType().IsArray())
		lhs, rhs = l.pointerArith(lt, lhs, rhs, rightIsPtr)
	}
	return l.emit2(binOpcode(v.Op), lhs, rhs)
}

// lowerShortCircuit lowers && and || without evaluating the right operand
// unless needed, merging the 0/1 result through a block parameter (spec
// §4.1 block-parameter SSA) rather than a phi. The short-circuited path
// gets its own stub block since only JMP (not BR) carries a block argument.
func (l *Lowerer) lowerShortCircuit(v *ast.BinaryExpr) *ir.Reg {
	rhsBB := l.fn.NewBB()
	stubBB := l.fn.NewBB()
	mergeBB := l.fn.NewBB()
	mergeBB.Param = l.fn.NewReg()

	lhs := l.lowerExpr(v.Left)
	if v.Op == ast.TK_AND_AND {
		l.brTo(lhs, rhsBB, stubBB)
	} else {
		l.brTo(lhs, stubBB, rhsBB)
	}

	l.cur = stubBB
	shortCircuitVal := int64(0)
	if v.Op == ast.TK_OR_OR {
		shortCircuitVal = 1
	}
	stub := l.emitImm(shortCircuitVal)
	l.jmpTo(mergeBB, stub)

	l.cur = rhsBB
	rhs := l.lowerExpr(v.Right)
	zero := l.emitImm(0)
	normalized := l.emit2(ir.NE, rhs, zero)
	l.jmpTo(mergeBB, normalized)

	l.cur = mergeBB
	return mergeBB.Param
}

func (l *Lowerer) lowerCond(v *ast.CondExpr) *ir.Reg {
	thenBB := l.fn.NewBB()
	elseBB := l.fn.NewBB()
	mergeBB := l.fn.NewBB()
	mergeBB.Param = l.fn.NewReg()

	cond := l.lowerExpr(v.Cond)
	l.brTo(cond, thenBB, elseBB)

	l.cur = thenBB
	thenVal := l.lowerExpr(v.Then)
	l.jmpTo(mergeBB, thenVal)

	l.cur = elseBB
	elseVal := l.lowerExpr(v.Else)
	l.jmpTo(mergeBB, elseVal)

	l.cur = mergeBB
	return mergeBB.Param
}

func (l *Lowerer) lowerCall(v *ast.CallExpr) *ir.Reg {
	var args []*ir.Reg
	for _, a := range v.Args { // left-to-right (spec §9 Open Question 2)
		args = append(args, l.lowerExpr(a))
	}
	r := l.fn.NewReg()
	instr := l.cur.Emit(ir.CALL)
	instr.R0 = r
	instr.Call = v.Callee
	instr.Args = args
	return r
}

func (l *Lowerer) lowerAssign(v *ast.AssignExpr) *ir.Reg {
	val := l.lowerExpr(v.Right)
	addr, elem := l.addressOf(v.Left)
	l.store(addr, val, elem.Size())
	return val
}

func (l *Lowerer) lowerCompoundAssign(v *ast.CompoundAssignExpr) *ir.Reg {
	addr, elem := l.addressOf(v.Left)
	old := l.load(addr, elem)
	rhs := l.lowerExpr(v.Right)
	if utils.Any(v.Op, ast.TK_PLUS, ast.TK_MINUS) && elem.IsPtr() {
		rhs = l.scale(rhs, elem.Base.Size())
	}
	nv := l.emit2(binOpcode(v.Op), old, rhs)
	l.store(addr, nv, elem.Size())
	return nv
}

func (l *Lowerer) lowerIncDec(v *ast.IncDecExpr) *ir.Reg {
	addr, elem := l.addressOf(v.Target)
	old := l.load(addr, elem)
	step := int64(1)
	if elem.IsPtr() {
		step = int64(elem.Base.Size())
	}
	delta := l.emitImm(step)
	op := ir.ADD
	if v.Op == ast.TK_DEC {
		op = ir.SUB
	}
	nv := l.emit2(op, old, delta)
	l.store(addr, nv, elem.Size())
	if v.Prefix {
		return nv
	}
	return old
}
