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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/fuse"
	"github.com/mimirforensics/recoverfs/pkg/session"
)

func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount <image> <session.json>",
		Short: "FUSE-mount a session's recoverable candidates read-only, for preview before recover",
		Args:  cobra.ExactArgs(2),
		RunE:  runMount,
	}

	cmd.Flags().StringP("mountpoint", "m", "", "directory to mount at (default: derived from the session file name)")
	return cmd
}

func runMount(cmd *cobra.Command, args []string) error {
	imagePath, sessionPath := args[0], args[1]

	img, err := blockio.OpenFile(imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	sess, err := session.Load(sessionPath)
	if err != nil {
		return err
	}

	mountpoint, _ := cmd.Flags().GetString("mountpoint")
	if mountpoint == "" {
		mountpoint = defaultMountpoint(sessionPath)
	}

	return fuse.Mount(mountpoint, img, sess)
}

// defaultMountpoint derives a mountpoint name from a session file name by
// stripping its extension.
func defaultMountpoint(sessionPath string) string {
	base := filepath.Base(sessionPath)
	ext := filepath.Ext(base)
	base = strings.TrimSuffix(base, ext)
	if base == "" {
		return "session_mnt"
	}
	return base + "_mnt"
}
