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
package analyze

import (
	"cc89/ast"
	"cc89/ir"
	"cc89/lower"
	"cc89/opt"
	"testing"
)

func lowerSrc(t *testing.T, src string) *ir.Function {
	t.Helper()
	p := ast.NewParser("t.c", []byte(src))
	_, funcs := p.ParseProgram()
	if len(funcs) == 0 {
		t.Fatal("no functions parsed")
	}
	fd := funcs[0]
	fn := ir.NewFunction(fd.Name, fd.RetType)
	fn.Params = fd.Params
	fn.Locals = fd.Locals
	lower.Lower(ir.NewProgram(), fn, fd)
	return fn
}

func TestLivenessCrossesBlockBoundary(t *testing.T) {
	fn := lowerSrc(t, `
int f(int n) {
    int i;
    i = 0;
    while (i < n) {
        i = i + 1;
    }
    return i;
}`)
	opt.Run(fn) // promote i onto a register, as compile.Compile does before liveness
	Liveness(fn)
	entry := fn.Entry()
	if entry.Out.Length() == 0 {
		t.Error("entry block's Out set should be nonempty: i's register crosses into the loop header")
	}
}

func TestLivenessNoLiveInAtEntryForWellFormedProgram(t *testing.T) {
	fn := lowerSrc(t, `int f(int a, int b) { return a + b; }`)
	Liveness(fn)
	entry := fn.Entry()
	if entry.In.Length() != 0 {
		t.Errorf("got %d live-in registers at entry, want 0: every register should be defined by STORE_ARG before use", entry.In.Length())
	}
}

func TestInjectDummyDefsCoversDegenerateLiveIn(t *testing.T) {
	fn := ir.NewFunction("f", ir.IntType)
	entry := fn.NewBB()
	r := fn.NewReg()
	ret := entry.Emit(ir.RETURN)
	ret.R2 = r
	entry.In.Add(r)

	injectDummyDefs(fn)

	if len(entry.Instrs) != 2 {
		t.Fatalf("got %d instructions, want 2 (dummy IMM + original RETURN)", len(entry.Instrs))
	}
	first := entry.Instrs[0]
	if first.Op != ir.IMM || first.R0 != r || first.Imm != 0 {
		t.Errorf("expected a leading `%%r = IMM 0` for the live-in register, got %v", first)
	}
}
