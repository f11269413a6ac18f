//go:build windows

package main

import (
	"github.com/rythin-sr/LiveSplit.Dishonored/process"
	"github.com/rythin-sr/LiveSplit.Dishonored/process_windows"
)

func platformHelper() process.ProcessHelper {
	return process_windows.NewHelper()
}
