package tool

import "os/exec"

// setProcessGroup is a no-op on windows; WaitDelay still bounds the wait.
func setProcessGroup(cmd *exec.Cmd) {}
