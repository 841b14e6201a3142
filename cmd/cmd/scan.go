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

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/core"
	"github.com/mimirforensics/recoverfs/internal/logger"
	"github.com/mimirforensics/recoverfs/internal/model"
	"github.com/mimirforensics/recoverfs/pkg/session"
)

func DefineScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Scan an image for deleted files and score their recoverability",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}

	cmd.Flags().String("fs", "", "filesystem kind to assume (xfs, btrfs, exfat); auto-detected when empty")
	cmd.Flags().Float64("threshold", 0.5, "minimum confidence for a candidate to be marked recoverable")
	cmd.Flags().StringP("output", "o", "", "path to write the session as JSON (default: session_<id>.json)")
	cmd.Flags().String("log-level", "INFO", "log level: DEBUG, INFO, WARN, ERROR")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	fsFlag, _ := cmd.Flags().GetString("fs")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	outputPath, _ := cmd.Flags().GetString("output")
	logLevel, _ := cmd.Flags().GetString("log-level")

	img, err := blockio.OpenFile(imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	log := logger.New(os.Stderr, logger.ParseLevel(logLevel))

	kind := model.FSUnknown
	if fsFlag != "" {
		kind = model.ParseFSKind(fsFlag)
		if kind == model.FSUnknown {
			return fmt.Errorf("%w: unrecognised --fs value %q", usageErr, fsFlag)
		}
	}

	result, err := core.Scan(img, imagePath, kind, threshold, log)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = fmt.Sprintf("session_%s.json", result.ID)
	}
	if err := session.Save(result, outputPath); err != nil {
		return err
	}

	fmt.Printf("filesystem:   %s\n", result.FSKind)
	fmt.Printf("candidates:   %d found, %d recoverable\n", result.CandidatesFound, result.CandidatesRecoverable)
	fmt.Printf("device size:  %s\n", humanize.Bytes(result.DeviceSize))
	fmt.Printf("duration:     %s\n", result.Duration)
	fmt.Printf("session file: %s\n", outputPath)
	return nil
}
