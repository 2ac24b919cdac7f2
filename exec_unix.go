//go:build unix

package scgiexec

import "syscall"

// defaultExec replaces the current process image with the script.
func defaultExec(path string, argv []string, env []string) error {
	return syscall.Exec(path, argv, env)
}
