//go:build windows

package input

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"keypulse/internal/keymap"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procBringWindowToTop         = user32.NewProc("BringWindowToTop")
	procIsIconic                 = user32.NewProc("IsIconic")
	procShowWindow               = user32.NewProc("ShowWindow")
	procSendInput                = user32.NewProc("SendInput")
)

const (
	inputKeyboard  = 1
	keyeventfKeyup = 0x0002
	swRestore      = 9
)

type keybdInput struct {
	Vk        uint16
	Scan      uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// rawInput matches the Win32 INPUT struct on amd64: 4-byte type, alignment
// padding, then the KEYBDINPUT arm of the union padded to MOUSEINPUT size.
type rawInput struct {
	Type uint32
	_    [4]byte
	Ki   keybdInput
	_    [8]byte
}

// Sender is the Windows backend, built on SendInput.
type Sender struct {
	resolver *keymap.Resolver
}

// NewSender returns a Sender resolving key names through resolver.
func NewSender(resolver *keymap.Resolver) *Sender {
	return &Sender{resolver: resolver}
}

type enumState struct {
	pid   uint32
	found Window
}

// enumProc is registered once; syscall callbacks are a finite resource.
var enumProc = syscall.NewCallback(func(hwnd, lparam uintptr) uintptr {
	state := (*enumState)(unsafe.Pointer(lparam))

	var windowPID uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&windowPID)))
	if windowPID != state.pid {
		return 1
	}
	if visible, _, _ := procIsWindowVisible.Call(hwnd); visible == 0 {
		return 1
	}
	var title [256]uint16
	if length, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&title[0])), 256); length == 0 {
		return 1
	}

	state.found = Window{Handle: hwnd, PID: state.pid}
	return 0 // stop enumeration
})

// FindWindow returns the first visible top-level window with a non-empty
// title owned by pid.
func (s *Sender) FindWindow(pid uint32) (Window, bool) {
	state := enumState{pid: pid}
	procEnumWindows.Call(enumProc, uintptr(unsafe.Pointer(&state)))
	return state.found, state.found.Handle != 0
}

// SendKey delivers one press-release of key to win. If win is not the
// foreground window it is raised first and the previous foreground window is
// restored afterwards.
func (s *Sender) SendKey(win Window, key string) error {
	combo, err := s.resolver.ParseCombo(key)
	if err != nil {
		return err
	}
	if win.Handle == 0 {
		return ErrWindowNotFound
	}

	prev, _, _ := procGetForegroundWindow.Call()
	focusChanged := prev != win.Handle
	if focusChanged {
		if iconic, _, _ := procIsIconic.Call(win.Handle); iconic != 0 {
			procShowWindow.Call(win.Handle, swRestore)
		}
		procBringWindowToTop.Call(win.Handle)
		procSetForegroundWindow.Call(win.Handle)
		time.Sleep(focusSettleDelay)
	}

	err = deliver(combo, emit, func() { time.Sleep(pressDelay) })

	// Restore the previous foreground window even when injection failed.
	if focusChanged && prev != 0 {
		time.Sleep(focusSettleDelay)
		procSetForegroundWindow.Call(prev)
	}
	return err
}

// emit injects one batch of key transitions atomically.
func emit(events []keyEvent) error {
	inputs := make([]rawInput, len(events))
	for i, ev := range events {
		inputs[i].Type = inputKeyboard
		inputs[i].Ki.Vk = uint16(ev.vk)
		if ev.up {
			inputs[i].Ki.Flags = keyeventfKeyup
		}
	}

	sent, _, callErr := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if sent == 0 {
		return fmt.Errorf("%w: %v", ErrInjectionFailed, callErr)
	}
	return nil
}
