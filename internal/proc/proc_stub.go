//go:build !windows

package proc

import "fmt"

func listProcesses() ([]Entry, error) {
	return nil, fmt.Errorf("process enumeration not supported on this platform")
}
