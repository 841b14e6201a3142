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
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/core"
	"github.com/mimirforensics/recoverfs/internal/logger"
	"github.com/mimirforensics/recoverfs/internal/recover"
	"github.com/mimirforensics/recoverfs/pkg/session"
)

func DefineRecoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover <image> <session.json> <out-dir>",
		Short: "Materialize candidates from a saved session to an output directory",
		Args:  cobra.ExactArgs(3),
		RunE:  runRecover,
	}

	cmd.Flags().StringSlice("ids", nil, "candidate ids to recover (default: every candidate in the session)")
	cmd.Flags().Bool("forensics", false, "enable forensic mode (audit log + hash manifest)")
	cmd.Flags().Bool("partial", true, "continue past a failed extent read, zero-filling the gap (forensics only)")
	cmd.Flags().Bool("reconstruct", false, "attempt to bridge small gaps from adjacent blocks (forensics only)")
	cmd.Flags().String("hash-algo", "SHA256", "hash algorithm for the manifest: SHA256 or SHA512")
	cmd.Flags().String("log-level", "INFO", "log level: DEBUG, INFO, WARN, ERROR")

	return cmd
}

func runRecover(cmd *cobra.Command, args []string) error {
	imagePath, sessionPath, outDir := args[0], args[1], args[2]

	ids, _ := cmd.Flags().GetStringSlice("ids")
	forensicsOn, _ := cmd.Flags().GetBool("forensics")
	partial, _ := cmd.Flags().GetBool("partial")
	reconstruct, _ := cmd.Flags().GetBool("reconstruct")
	hashAlgo, _ := cmd.Flags().GetString("hash-algo")
	logLevel, _ := cmd.Flags().GetString("log-level")

	img, err := blockio.OpenFile(imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	sess, err := session.Load(sessionPath)
	if err != nil {
		return err
	}

	log := logger.New(os.Stderr, logger.ParseLevel(logLevel))

	forensics := recover.ForensicsConfig{
		Enabled:              forensicsOn,
		PartialRecovery:      forensicsOn && partial,
		ExtentReconstruction: forensicsOn && reconstruct,
		HashVerification:     forensicsOn,
		HashAlgorithm:        recover.HashAlgorithm(hashAlgo),
		AuditLog:             forensicsOn,
	}

	report, err := core.Recover(img, sess, outDir, ids, forensics, log)
	if err != nil {
		return err
	}

	fmt.Printf("recovered:     %d\n", report.Recovered)
	fmt.Printf("partial:       %d\n", report.Partial)
	fmt.Printf("reconstructed: %d\n", report.Reconstructed)
	fmt.Printf("skipped:       %d\n", report.Skipped)
	fmt.Printf("failed:        %d\n", report.Failed)
	return nil
}
