//go:build !windows

package main

import (
	"os/exec"
	"syscall"
)

// detachProcess starts cmd in a new session so it outlives the terminal
func detachProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}
