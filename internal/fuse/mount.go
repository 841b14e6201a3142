//go:build !linux
// +build !linux

package fuse

import (
	"fmt"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/model"
)

func Mount(mountpoint string, img blockio.Image, session *model.RecoverySession) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
