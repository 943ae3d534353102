package main

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHostStat(t *testing.T) {
	info := HostStat()
	require.Equal(t, runtime.GOARCH, info.Arch)
	require.Greater(t, info.CPUCount, 0)
	require.GreaterOrEqual(t, info.RAM, 0.0)
}
