// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Pins the dispatch loop to one OS thread and, optionally, one CPU.
// Platform-specific implementations live in build-tagged files.

package affinity

import "runtime"

// PinLoopThread locks the calling goroutine to its OS thread and, when cpuID
// is not negative, restricts that thread to cpuID. The returned release
// unlocks the thread; the CPU mask is left as is.
func PinLoopThread(cpuID int) (release func(), err error) {
	runtime.LockOSThread()
	if cpuID >= 0 {
		if err := setAffinityPlatform(cpuID); err != nil {
			runtime.UnlockOSThread()
			return nil, err
		}
	}
	return runtime.UnlockOSThread, nil
}
