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

import "cc89/utils"

// Program is the single instance per invocation: globals, functions and the
// macro table passed through from the preprocessor shim (out of scope here,
// carried only as an opaque ordered table so later stages can still report
// "unknown macro" diagnostics against it).
type Program struct {
	Globals   []*Var
	Functions []*Function
	Macros    *utils.OrderedMap[string]
}

func NewProgram() *Program {
	return &Program{Macros: utils.NewOrderedMap[string]()}
}

func (p *Program) FindFunction(name string) *Function {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func (p *Program) FindGlobal(name string) *Var {
	for _, v := range p.Globals {
		if v.Name == name {
			return v
		}
	}
	return nil
}
