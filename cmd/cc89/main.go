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

// cc89 compiles a single C89/C99-subset translation unit to x86-64 GAS
// assembly in Intel syntax. The CLI shape (a cobra root command taking one
// positional source file plus debug-dump flags) is grounded on the pack's
// own cobra user, oisee-z80-optimizer/cmd/z80opt/main.go.
package main

import (
	"cc89/compile"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var output string
	var dumpAST, dumpIR, dumpLIR, dumpASM bool

	rootCmd := &cobra.Command{
		Use:   "cc89 [flags] <source.c>",
		Short: "Compile a C89/C99-subset source file to x86-64 assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("cannot read %s: %w", path, err)
			}

			asm, err := compile.Compile(path, src, compile.Options{
				DumpAST: dumpAST,
				DumpIR:  dumpIR,
				DumpLIR: dumpLIR,
				DumpASM: dumpASM,
				Stderr:  os.Stderr,
			})
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				fmt.Print(asm)
				return nil
			}
			return os.WriteFile(output, []byte(asm), 0644)
		},
	}

	rootCmd.Flags().StringVarP(&output, "output", "o", "", `write assembly here instead of stdout ("-" = stdout)`)
	rootCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed AST to stderr before lowering")
	rootCmd.Flags().BoolVar(&dumpIR, "dump-ir", false, "print each function's CFG/IR to stderr after lowering")
	rootCmd.Flags().BoolVar(&dumpLIR, "dump-lir", false, "print each function's IR after the two-address rewrite")
	rootCmd.Flags().BoolVar(&dumpASM, "dump-asm", false, "echo the emitted assembly to stderr as well as -o")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cc89: %v\n", err)
		os.Exit(1)
	}
}
