//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package action

import "errors"

func injectTerminal(string) error {
	return errors.New("terminal injection is not supported on this platform")
}
