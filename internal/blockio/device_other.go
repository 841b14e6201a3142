//go:build !linux
// +build !linux

package blockio

import (
	"fmt"
	"os"
)

// blockDeviceSize has no portable implementation outside Linux; it always
// returns an error, so OpenFile fails for a device node whose Stat-reported
// size is zero.
func blockDeviceSize(f *os.File) (int64, error) {
	return 0, fmt.Errorf("blockio: raw device size detection is only supported on Linux")
}
