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

// Package lower implements spec §4.1: AST to three-address IR. It keeps the
// teacher's GraphBuilder shape (current block, a scopes stack for break/
// continue/switch targets) but drops phi construction and block sealing —
// merge points are block parameters carried explicitly by JMP, not phis
// discovered by looking up predecessors (spec §4.1 "block-parameter SSA").
package lower

import (
	"cc89/ast"
	"cc89/ir"
)

// Lowerer tracks two independent target stacks grounded on the teacher's
// BlockScope{exit, post}: `break` targets the nearest loop OR switch, while
// `continue` always targets the nearest enclosing loop, passing transparently
// through any switch in between (C's continue-through-switch rule).
type Lowerer struct {
	prog          *ir.Program
	fn            *ir.Function
	cur           *ir.BB
	breakTargets  []*ir.BB
	continueStack []*ir.BB
	strNum        int
}

// Lower lowers one parsed function into IR basic blocks attached to fn.
// fn's Params/Locals/RetType must already be populated by the parser.
func Lower(prog *ir.Program, fn *ir.Function, fd *ast.FuncDecl) {
	l := &Lowerer{prog: prog, fn: fn}
	entry := fn.NewBB()
	l.cur = entry

	// STORE_ARG materializes the i-th incoming ABI argument into a fresh
	// register, the same way IMM materializes a constant; the value is then
	// spilled to the parameter's stack slot with an ordinary STORE, so a
	// parameter is promotable by scalar replacement exactly like any other
	// local with a single store (spec §4.6 ABI note, §4.2 scalar
	// replacement).
	for i, p := range fn.Params {
		r := l.fn.NewReg()
		instr := l.cur.Emit(ir.STORE_ARG)
		instr.R0 = r
		instr.Imm = int64(i)
		instr.Size = p.Type.Size()
		addr := l.addressOfVar(p)
		l.store(addr, r, p.Type.Size())
	}

	l.lowerStmt(fd.Body)

	// Implicit `return 0;` at the end of a function whose body falls off
	// the end (spec's dropped-feature supplement).
	if terminatorOrNil(l.cur) == nil {
		zero := l.emitImm(0)
		r := l.cur.Emit(ir.RETURN)
		r.R2 = zero
	}
}

// terminatorOrNil is a non-panicking probe used only during lowering, since a
// block under construction may not yet have any instructions at all.
func terminatorOrNil(bb *ir.BB) *ir.Instr {
	if len(bb.Instrs) == 0 {
		return nil
	}
	last := bb.Instrs[len(bb.Instrs)-1]
	if last.Op.IsTerminator() {
		return last
	}
	return nil
}

func (l *Lowerer) emitImm(v int64) *ir.Reg {
	r := l.fn.NewReg()
	instr := l.cur.Emit(ir.IMM)
	instr.R0 = r
	instr.Imm = v
	return r
}

// jmpTo terminates the current block with an unconditional jump, optionally
// carrying a value into the target's block parameter.
func (l *Lowerer) jmpTo(to *ir.BB, arg *ir.Reg) {
	if terminatorOrNil(l.cur) != nil {
		return // current block already left (e.g. after a return)
	}
	instr := l.cur.Emit(ir.JMP)
	instr.BB1 = to
	instr.BBArg = arg
	l.cur.WireTo(to)
}

func (l *Lowerer) brTo(cond *ir.Reg, thenBB, elseBB *ir.BB) {
	instr := l.cur.Emit(ir.BR)
	instr.R2 = cond
	instr.BB1 = thenBB
	instr.BB2 = elseBB
	l.cur.WireTo(thenBB)
	l.cur.WireTo(elseBB)
}

func (l *Lowerer) pushLoop(brk, cont *ir.BB) {
	l.breakTargets = append(l.breakTargets, brk)
	l.continueStack = append(l.continueStack, cont)
}

func (l *Lowerer) popLoop() {
	l.breakTargets = l.breakTargets[:len(l.breakTargets)-1]
	l.continueStack = l.continueStack[:len(l.continueStack)-1]
}

func (l *Lowerer) pushSwitch(brk *ir.BB) { l.breakTargets = append(l.breakTargets, brk) }
func (l *Lowerer) popSwitch()            { l.breakTargets = l.breakTargets[:len(l.breakTargets)-1] }

func (l *Lowerer) topBreak() *ir.BB    { return l.breakTargets[len(l.breakTargets)-1] }
func (l *Lowerer) topContinue() *ir.BB { return l.continueStack[len(l.continueStack)-1] }
