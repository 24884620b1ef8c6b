//go:build windows

package main

import (
	"os/exec"
	"syscall"
)

// detachProcess starts cmd in its own process group
func detachProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
