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
package ast

import "fmt"

// Diagnostic is a user-facing lex/parse/type error, reported with a
// file:line:column prefix (spec §7). It is distinct from the internal
// invariant violations utils.Assert/Fatal guard against: a Diagnostic means
// the input program is bad, not that the compiler is.
type Diagnostic struct {
	Pos Pos
	Msg string
}

func NewDiagnostic(pos Pos, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: error: %s", d.Pos.File, d.Pos.Line, d.Pos.Column, d.Msg)
}
