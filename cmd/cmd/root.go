// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package cmd wires the cobra CLI surface around the core detect/scan/
// recover operations. It is the external collaborator the spec describes as
// out of the core's scope (§1); it carries no recovery logic of its own.
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mimirforensics/recoverfs/internal/env"
)

var usageErr = errors.New("cmd: usage error")

// IsUsageError reports whether err (or one it wraps) originated from a
// cobra argument/flag validation failure, for the exit-code mapping in
// main.go.
func IsUsageError(err error) bool {
	return errors.Is(err, usageErr)
}

func Execute() error {
	rootCmd := &cobra.Command{
		Use:     env.AppName,
		Short:   env.AppName + " - deleted-file forensic recovery for XFS, Btrfs and exFAT images",
		Version: env.Version,
	}
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(DefineDetectCommand())
	rootCmd.AddCommand(DefineScanCommand())
	rootCmd.AddCommand(DefineRecoverCommand())
	rootCmd.AddCommand(DefineMountCommand())

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", usageErr, err)
	})
	for _, c := range rootCmd.Commands() {
		if validate := c.Args; validate != nil {
			c.Args = func(cmd *cobra.Command, args []string) error {
				if err := validate(cmd, args); err != nil {
					return fmt.Errorf("%w: %v", usageErr, err)
				}
				return nil
			}
		}
	}

	return rootCmd.Execute()
}
