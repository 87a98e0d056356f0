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

type TokenKind int

const (
	TK_EOF TokenKind = iota
	TK_IDENT
	LIT_INT
	LIT_CHAR
	LIT_STRING

	// keywords
	TK_INT
	TK_CHAR
	TK_VOID
	TK_STRUCT
	TK_IF
	TK_ELSE
	TK_FOR
	TK_WHILE
	TK_DO
	TK_SWITCH
	TK_CASE
	TK_DEFAULT
	TK_BREAK
	TK_CONTINUE
	TK_RETURN
	TK_SIZEOF

	// punctuation
	TK_PLUS
	TK_MINUS
	TK_STAR
	TK_SLASH
	TK_PERCENT
	TK_AMP
	TK_PIPE
	TK_CARET
	TK_TILDE
	TK_BANG
	TK_ASSIGN
	TK_EQ
	TK_NE
	TK_LT
	TK_LE
	TK_GT
	TK_GE
	TK_AND_AND
	TK_OR_OR
	TK_SHL
	TK_SHR
	TK_INC
	TK_DEC
	TK_PLUS_ASSIGN
	TK_MINUS_ASSIGN
	TK_STAR_ASSIGN
	TK_SLASH_ASSIGN
	TK_PERCENT_ASSIGN
	TK_AMP_ASSIGN
	TK_PIPE_ASSIGN
	TK_CARET_ASSIGN
	TK_SHL_ASSIGN
	TK_SHR_ASSIGN
	TK_LPAREN
	TK_RPAREN
	TK_LBRACE
	TK_RBRACE
	TK_LBRACKET
	TK_RBRACKET
	TK_SEMI
	TK_COMMA
	TK_DOT
	TK_QUESTION
	TK_COLON
)

var keywords = map[string]TokenKind{
	"int":      TK_INT,
	"char":     TK_CHAR,
	"void":     TK_VOID,
	"struct":   TK_STRUCT,
	"if":       TK_IF,
	"else":     TK_ELSE,
	"for":      TK_FOR,
	"while":    TK_WHILE,
	"do":       TK_DO,
	"switch":   TK_SWITCH,
	"case":     TK_CASE,
	"default":  TK_DEFAULT,
	"break":    TK_BREAK,
	"continue": TK_CONTINUE,
	"return":   TK_RETURN,
	"sizeof":   TK_SIZEOF,
}

// Pos is a source position approximated from the offending pointer, used for
// the `file:line:col` prefix of user diagnostics (no caret line is printed).
type Pos struct {
	File   string
	Line   int
	Column int
}

type Token struct {
	Kind   TokenKind
	Lexeme string
	Pos    Pos
}
