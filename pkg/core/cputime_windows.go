//go:build !unix

package core

import "time"

// processCPUTime is not implemented on this platform.
func processCPUTime() time.Duration {
	return 0
}
