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
)

func (l *Lowerer) lowerStmt(s ast.AstStmt) {
	switch v := s.(type) {
	case *ast.BlockStmt:
		for _, st := range v.Stmts {
			l.lowerStmt(st)
		}
	case *ast.ExprStmt:
		l.lowerExpr(v.Expr)
	case *ast.DeclStmt:
		l.fn.AddLocal(v.Var)
		if v.Init != nil {
			addr := l.addressOfVar(v.Var)
			val := l.lowerExpr(v.Init)
			l.store(addr, val, v.Var.Type.Size())
		}
	case *ast.IfStmt:
		l.lowerIf(v)
	case *ast.WhileStmt:
		l.lowerWhile(v)
	case *ast.DoWhileStmt:
		l.lowerDoWhile(v)
	case *ast.ForStmt:
		l.lowerFor(v)
	case *ast.SwitchStmt:
		l.lowerSwitch(v)
	case *ast.BreakStmt:
		l.jmpTo(l.topBreak(), nil)
	case *ast.ContinueStmt:
		l.jmpTo(l.topContinue(), nil)
	case *ast.ReturnStmt:
		l.lowerReturn(v)
	default:
		utils.Unimplement()
	}
}

func (l *Lowerer) lowerReturn(v *ast.ReturnStmt) {
	var val *ir.Reg
	if v.Value != nil {
		val = l.lowerExpr(v.Value)
	}
	instr := l.cur.Emit(ir.RETURN)
	instr.R2 = val
	// Any statement textually following a return in the same block is dead
	// but still legal C; open a fresh unreachable block so it has somewhere
	// to land instead of being appended after this block's terminator.
	l.cur = l.fn.NewBB()
}

func (l *Lowerer) lowerIf(v *ast.IfStmt) {
	thenBB := l.fn.NewBB()
	mergeBB := l.fn.NewBB()
	elseBB := mergeBB
	if v.Else != nil {
		elseBB = l.fn.NewBB()
	}

	cond := l.lowerExpr(v.Cond)
	l.brTo(cond, thenBB, elseBB)

	l.cur = thenBB
	l.lowerStmt(v.Then)
	l.jmpTo(mergeBB, nil)

	if v.Else != nil {
		l.cur = elseBB
		l.lowerStmt(v.Else)
		l.jmpTo(mergeBB, nil)
	}

	l.cur = mergeBB
}

func (l *Lowerer) lowerWhile(v *ast.WhileStmt) {
	headerBB := l.fn.NewBB()
	bodyBB := l.fn.NewBB()
	exitBB := l.fn.NewBB()

	l.jmpTo(headerBB, nil)
	l.cur = headerBB
	cond := l.lowerExpr(v.Cond)
	l.brTo(cond, bodyBB, exitBB)

	l.cur = bodyBB
	l.pushLoop(exitBB, headerBB)
	l.lowerStmt(v.Body)
	l.popLoop()
	l.jmpTo(headerBB, nil)

	l.cur = exitBB
}

func (l *Lowerer) lowerDoWhile(v *ast.DoWhileStmt) {
	bodyBB := l.fn.NewBB()
	condBB := l.fn.NewBB()
	exitBB := l.fn.NewBB()

	l.jmpTo(bodyBB, nil)
	l.cur = bodyBB
	l.pushLoop(exitBB, condBB)
	l.lowerStmt(v.Body)
	l.popLoop()
	l.jmpTo(condBB, nil)

	l.cur = condBB
	cond := l.lowerExpr(v.Cond)
	l.brTo(cond, bodyBB, exitBB)

	l.cur = exitBB
}

func (l *Lowerer) lowerFor(v *ast.ForStmt) {
	if v.Init != nil {
		l.lowerStmt(v.Init)
	}
	headerBB := l.fn.NewBB()
	bodyBB := l.fn.NewBB()
	postBB := l.fn.NewBB()
	exitBB := l.fn.NewBB()

	l.jmpTo(headerBB, nil)
	l.cur = headerBB
	if v.Cond != nil {
		cond := l.lowerExpr(v.Cond)
		l.brTo(cond, bodyBB, exitBB)
	} else {
		l.jmpTo(bodyBB, nil)
	}

	l.cur = bodyBB
	l.pushLoop(exitBB, postBB)
	l.lowerStmt(v.Body)
	l.popLoop()
	l.jmpTo(postBB, nil)

	l.cur = postBB
	if v.Post != nil {
		l.lowerExpr(v.Post)
	}
	l.jmpTo(headerBB, nil)

	l.cur = exitBB
}

// lowerSwitch lowers to a linear chain of EQ+BR comparisons against the tag,
// falling through to the default clause (or past the switch, if absent).
// break targets the exit block; C's case fallthrough is preserved by simply
// not inserting a jump between consecutive case bodies.
func (l *Lowerer) lowerSwitch(v *ast.SwitchStmt) {
	tag := l.lowerExpr(v.Tag)
	exitBB := l.fn.NewBB()

	var defaultClause *ast.CaseClause
	caseBBs := make([]*ir.BB, len(v.Cases))
	for i, c := range v.Cases {
		caseBBs[i] = l.fn.NewBB()
		if c.Value == nil {
			defaultClause = c
		}
	}

	testBB := l.cur
	for i, c := range v.Cases {
		if c.Value == nil {
			continue
		}
		l.cur = testBB
		nextTestBB := l.fn.NewBB()
		val := l.emitImm(*c.Value)
		eq := l.emit2(ir.EQ, tag, val)
		l.brTo(eq, caseBBs[i], nextTestBB)
		testBB = nextTestBB
	}
	l.cur = testBB
	if defaultClause != nil {
		l.jmpTo(l.bbOf(v.Cases, defaultClause, caseBBs), nil)
	} else {
		l.jmpTo(exitBB, nil)
	}

	l.pushSwitch(exitBB)
	for i, c := range v.Cases {
		l.cur = caseBBs[i]
		for _, st := range c.Stmts {
			l.lowerStmt(st)
		}
		if i+1 < len(caseBBs) {
			l.jmpTo(caseBBs[i+1], nil)
		} else {
			l.jmpTo(exitBB, nil)
		}
	}
	l.popSwitch()

	l.cur = exitBB
}

func (l *Lowerer) bbOf(cases []*ast.CaseClause, target *ast.CaseClause, bbs []*ir.BB) *ir.BB {
	for i, c := range cases {
		if c == target {
			return bbs[i]
		}
	}
	utils.ShouldNotReachHere()
	return nil
}
