//go:build linux

package affinity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPinLoopThread(t *testing.T) {
	before, err := currentCPUs()
	require.NoError(t, err)
	require.NotEmpty(t, before)
	cpu := before[0]

	done := make(chan struct{})
	go func() {
		defer close(done)
		release, err := PinLoopThread(cpu)
		require.NoError(t, err)
		defer release()

		cpus, err := currentCPUs()
		require.NoError(t, err)
		require.Equal(t, []int{cpu}, cpus)
	}()
	<-done
}

func TestPinLoopThreadWithoutCPU(t *testing.T) {
	release, err := PinLoopThread(-1)
	require.NoError(t, err)
	release()
}

func TestPinLoopThreadRejectsBadCPU(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := PinLoopThread(1023)
		require.Error(t, err)
	}()
	<-done
}
