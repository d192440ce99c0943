//go:build linux || darwin || freebsd || netbsd || openbsd

package action

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

func injectTerminal(text string) error {
	fd := os.Stdin.Fd()
	for i := 0; i < len(text); i++ {
		b := text[i]
		if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(unix.TIOCSTI), uintptr(unsafe.Pointer(&b))); errno != 0 {
			return fmt.Errorf("TIOCSTI: %w", errno)
		}
	}
	return nil
}
