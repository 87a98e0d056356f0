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

// Package compile sequences the whole pipeline: parse, lower every function
// to IR, optimize, analyze, allocate and emit. Grounded on the teacher's
// compile/compiler.go compileY, which drives the same shape of stage list
// (ssa.Compile -> codegen.Lower -> codegen.CodeGen) behind a handful of
// debug-dump booleans; cc89 exposes the same knobs as real CLI flags
// instead of source constants (see cmd/cc89).
package compile

import (
	"cc89/analyze"
	"cc89/ast"
	"cc89/emit"
	"cc89/ir"
	"cc89/lower"
	"cc89/opt"
	"cc89/regalloc"
	"fmt"
	"io"
)

// Options controls the debug-dump behavior of Compile, mirroring the
// teacher's DebugDumpAst/DebugDumpSSA constants as real fields.
type Options struct {
	DumpAST bool
	DumpIR  bool
	DumpLIR bool
	DumpASM bool

	Stderr io.Writer
}

// Compile runs the full pipeline over src (one C89/C99-subset translation
// unit named fileName for diagnostics) and returns the generated assembly
// text. A non-nil error is always a collected *ast.Diagnostic; internal
// invariant violations panic via utils.Assert/Fatal instead, per the
// teacher's own error-handling split.
func Compile(fileName string, src []byte, opts Options) (string, error) {
	p := ast.NewParser(fileName, src)
	prog, funcs, err := parseProgram(p)
	if err != nil {
		return "", err
	}

	if opts.DumpAST {
		for _, fd := range funcs {
			fmt.Fprintf(opts.Stderr, "== AST(%s) ==\n%s\n", fd.Name, fd.String())
		}
	}

	for _, fd := range funcs {
		fn := ir.NewFunction(fd.Name, fd.RetType)
		fn.Params = fd.Params
		fn.Locals = fd.Locals
		prog.Functions = append(prog.Functions, fn)
		lower.Lower(prog, fn, fd)
		opt.Run(fn)

		if opts.DumpIR {
			fmt.Fprintf(opts.Stderr, "== IR(%s) ==\n%s\n", fn.Name, fn.String())
		}

		analyze.Liveness(fn)
		regalloc.RewriteTwoAddress(fn)
		regalloc.Allocate(fn)
		regalloc.MaterializeSpills(fn)

		if opts.DumpLIR {
			fmt.Fprintf(opts.Stderr, "== LIR(%s) ==\n%s\n", fn.Name, fn.String())
		}
	}

	text := emit.Emit(prog)
	if opts.DumpASM {
		fmt.Fprintf(opts.Stderr, "== ASM ==\n%s\n", text)
	}
	return text, nil
}

// parseProgram runs the parser and turns its first diagnostic, if any, into
// an error; cc89 stops at the first parse error rather than collecting a
// batch, matching the teacher's own single-shot ast.ParseFile.
func parseProgram(p *ast.Parser) (prog *ir.Program, funcs []*ast.FuncDecl, err error) {
	defer func() {
		if r := recover(); r != nil {
			if d, ok := r.(*ast.Diagnostic); ok {
				err = d
				return
			}
			panic(r)
		}
	}()
	prog, funcs = p.ParseProgram()
	return prog, funcs, nil
}
