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
package opt

import (
	"cc89/ast"
	"cc89/ir"
	"cc89/lower"
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

func TestScalarReplacePromotesSingleStoreLocal(t *testing.T) {
	fn := lowerSrc(t, `int f(void) { int x; x = 5; return x; }`)
	before := countOp(fn, ir.BPREL)
	if before == 0 {
		t.Fatal("expected at least one BPREL before promotion")
	}
	Run(fn)
	if got := countOp(fn, ir.BPREL); got != 0 {
		t.Errorf("got %d live BPREL after promotion, want 0 (single-store local should be fully promoted)", got)
	}
	if got := countOp(fn, ir.LOAD); got != 0 {
		t.Errorf("got %d live LOAD after promotion, want 0", got)
	}
}

func TestScalarReplaceSkipsAddressTaken(t *testing.T) {
	fn := lowerSrc(t, `
int f(void) {
    int x;
    int *p;
    x = 5;
    p = &x;
    return *p;
}`)
	Run(fn)
	found := false
	for _, v := range fn.Locals {
		if v.Name == "x" {
			if v.AddressTaken && v.Promoted != nil {
				t.Error("address-taken local must never be promoted")
			}
			found = true
		}
	}
	if !found {
		t.Fatal("local x not found")
	}
}

func TestScalarReplacePromotesMultiStoreLocal(t *testing.T) {
	fn := lowerSrc(t, `
int f(int cond) {
    int x;
    if (cond) {
        x = 1;
    } else {
        x = 2;
    }
    return x;
}`)
	Run(fn)
	found := false
	for _, v := range fn.Locals {
		if v.Name == "x" {
			found = true
			if v.Promoted == nil {
				t.Error("local with two static stores reaching a common merge should still be promoted")
			}
		}
	}
	if !found {
		t.Fatal("local x not found")
	}
	if got := countOp(fn, ir.BPREL); got != 0 {
		t.Errorf("got %d live BPREL after promotion, want 0", got)
	}
}

func TestScalarReplacePromotesLoopAccumulator(t *testing.T) {
	fn := lowerSrc(t, `
int f(int n) {
    int sum;
    int i;
    sum = 0;
    i = 0;
    while (i < n) {
        sum = sum + i;
        i = i + 1;
    }
    return sum;
}`)
	Run(fn)
	for _, name := range []string{"sum", "i"} {
		for _, v := range fn.Locals {
			if v.Name == name && v.Promoted == nil {
				t.Errorf("loop variable %q should be promoted to a register", name)
			}
		}
	}
	if got := countOp(fn, ir.BPREL); got != 0 {
		t.Errorf("got %d live BPREL after promotion, want 0", got)
	}
}
