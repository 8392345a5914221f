//go:build windows

package proc

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// listProcesses walks a Toolhelp32 snapshot of all running processes.
func listProcesses() ([]Entry, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	var entries []Entry
	if err := windows.Process32First(snapshot, &entry); err != nil {
		return nil, err
	}
	for {
		entries = append(entries, Entry{
			PID:  entry.ProcessID,
			Name: windows.UTF16ToString(entry.ExeFile[:]),
		})
		if err := windows.Process32Next(snapshot, &entry); err != nil {
			break
		}
	}
	return entries, nil
}
