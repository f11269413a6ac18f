//go:build linux

package main

import (
	"github.com/rythin-sr/LiveSplit.Dishonored/process"
	"github.com/rythin-sr/LiveSplit.Dishonored/process_linux"
)

func platformHelper() process.ProcessHelper {
	return process_linux.NewHelper()
}
