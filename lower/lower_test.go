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
	"testing"
)

// lowerSrc parses and lowers one translation unit's first function, mirroring
// the wiring compile.Compile does between ast.ParseProgram and lower.Lower.
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
	Lower(ir.NewProgram(), fn, fd)
	return fn
}

func countOp(fn *ir.Function, op ir.Op) int {
	n := 0
	for _, bb := range fn.BBs {
		for _, i := range bb.Instrs {
			if i.Op == op {
				n++
			}
		}
	}
	return n
}

func TestLowerStoreArgPerParam(t *testing.T) {
	fn := lowerSrc(t, `int add(int a, int b) { return a + b; }`)
	if got := countOp(fn, ir.STORE_ARG); got != 2 {
		t.Errorf("got %d STORE_ARG, want 2 (one per parameter)", got)
	}
	// The explicit return, plus the implicit `return 0` that closes the
	// unreachable block opened after it.
	if got := countOp(fn, ir.RETURN); got != 2 {
		t.Errorf("got %d RETURN, want 2", got)
	}
}

func TestLowerImplicitReturnZero(t *testing.T) {
	fn := lowerSrc(t, `int f(void) { int x; x = 1; }`)
	if got := countOp(fn, ir.RETURN); got != 1 {
		t.Fatalf("got %d RETURN, want 1 (implicit fall-off return)", got)
	}
	last := fn.BBs[len(fn.BBs)-1]
	ret := last.Instrs[len(last.Instrs)-1]
	if ret.Op != ir.RETURN || ret.R2 == nil {
		t.Fatalf("expected a trailing RETURN with a zero value, got %v", ret)
	}
}

func TestLowerIfCreatesThreeBlocks(t *testing.T) {
	fn := lowerSrc(t, `
int f(int x) {
    if (x) {
        x = 1;
    } else {
        x = 2;
    }
    return x;
}`)
	// entry, then, else, join -- at least 4 blocks for an if/else.
	if len(fn.BBs) < 4 {
		t.Fatalf("got %d blocks, want at least 4 for if/else", len(fn.BBs))
	}
	if got := countOp(fn, ir.BR); got != 1 {
		t.Errorf("got %d BR, want 1", got)
	}
}

func TestLowerWhileLoopBackEdge(t *testing.T) {
	fn := lowerSrc(t, `
int f(int n) {
    int i;
    i = 0;
    while (i < n) {
        i = i + 1;
    }
    return i;
}`)
	if got := countOp(fn, ir.BR); got != 1 {
		t.Errorf("got %d BR, want 1 (the loop condition)", got)
	}
	if got := countOp(fn, ir.JMP); got < 2 {
		t.Errorf("got %d JMP, want at least 2 (into the header, and the back edge)", got)
	}
}

func TestLowerBreakAndContinueTargetLoopNotSwitch(t *testing.T) {
	fn := lowerSrc(t, `
int f(int n) {
    int i;
    i = 0;
    while (i < n) {
        switch (i) {
        case 1:
            break;
        default:
            continue;
        }
        i = i + 1;
    }
    return i;
}`)
	// Lowering must not panic (continue passing through switch to the loop,
	// break staying local to the switch) and must still emit the trailing
	// return (plus the implicit `return 0` of the block opened after it).
	if got := countOp(fn, ir.RETURN); got != 2 {
		t.Errorf("got %d RETURN, want 2", got)
	}
}

func TestLowerCallArguments(t *testing.T) {
	fn := lowerSrc(t, `
int f(int x) {
    return g(x, 2);
}
int g(int a, int b) {
    return a + b;
}`)
	if got := countOp(fn, ir.CALL); got != 1 {
		t.Fatalf("got %d CALL, want 1", got)
	}
	for _, bb := range fn.BBs {
		for _, i := range bb.Instrs {
			if i.Op == ir.CALL {
				if i.Call != "g" {
					t.Errorf("got call target %q, want g", i.Call)
				}
				if len(i.Args) != 2 {
					t.Errorf("got %d call args, want 2", len(i.Args))
				}
			}
		}
	}
}
