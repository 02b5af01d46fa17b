//go:build linux

package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	iocRead = 2

	eviocgrab = 0x40044590
)

type rawEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

var rawEventSize = binary.Size(rawEvent{})

func ioc(dir, nr, size uintptr) uintptr {
	return dir<<30 | size<<16 | uintptr('E')<<8 | nr
}

func eviocgname(size int) uintptr {
	return ioc(iocRead, 0x06, uintptr(size))
}

func eviocgbit(ev, size int) uintptr {
	return ioc(iocRead, uintptr(0x20+ev), uintptr(size))
}

func ioctlBuf(conn syscall.RawConn, req uintptr, buf []byte) error {
	var errno syscall.Errno

	ctlErr := conn.Control(func(fd uintptr) {
		_, _, errno = unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(unsafe.Pointer(&buf[0])))
	})
	if ctlErr != nil {
		return ctlErr
	}

	if errno != 0 {
		return errno
	}

	return nil
}

func grab(conn syscall.RawConn, on bool) error {
	arg := 0
	if on {
		arg = 1
	}

	var ioErr error

	ctlErr := conn.Control(func(fd uintptr) {
		ioErr = unix.IoctlSetInt(int(fd), eviocgrab, arg)
	})
	if ctlErr != nil {
		return ctlErr
	}

	return ioErr
}

// Probe reads a node's name and capabilities and classifies it.
func (m *Manager) Probe(path string) (Info, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return Info{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	conn, err := f.SyscallConn()
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", path, err)
	}

	name := make([]byte, 256)
	if err := ioctlBuf(conn, eviocgname(len(name)), name); err != nil {
		return Info{}, fmt.Errorf("read name of %s: %w", path, err)
	}

	evBits := make([]byte, 4)
	keyBits := make([]byte, keyMax/8+1)
	absBits := make([]byte, 8)
	relBits := make([]byte, 2)

	for _, q := range []struct {
		ev  int
		buf []byte
	}{{0, evBits}, {evKey, keyBits}, {evAbs, absBits}, {evRel, relBits}} {
		if err := ioctlBuf(conn, eviocgbit(q.ev, len(q.buf)), q.buf); err != nil {
			return Info{}, fmt.Errorf("read capabilities of %s: %w", path, err)
		}
	}

	return Info{
		Path: path,
		Name: cString(name),
		Role: classify(evBits, keyBits, absBits, relBits),
	}, nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}

	return string(b)
}

// Device is an open input device with a reader goroutine.
type Device struct {
	info      Info
	file      *os.File
	exclusive bool
	closing   chan struct{}
	done      chan struct{}
}

// Open opens a device and starts delivering its presses to Events. With
// exclusive set the device is grabbed so no other process sees its input.
func (m *Manager) Open(info Info, exclusive bool) (*Device, error) {
	f, err := os.OpenFile(info.Path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", info.Path, err)
	}

	d := &Device{info: info, file: f, closing: make(chan struct{}), done: make(chan struct{})}

	if exclusive {
		conn, connErr := f.SyscallConn()
		if connErr == nil {
			connErr = grab(conn, true)
		}

		if connErr != nil {
			// Another process may hold the grab. Reading still works.
			m.logger.Warn("exclusive grab failed",
				slog.String("device", info.Path),
				slog.String("error", connErr.Error()),
			)
		} else {
			d.exclusive = true
		}
	}

	go m.read(d)

	return d, nil
}

func (m *Manager) read(d *Device) {
	defer close(d.done)

	tr := newTranslator(d.info)
	buf := make([]byte, rawEventSize*32)

	for {
		n, err := d.file.Read(buf)
		if err != nil {
			if !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.EOF) {
				m.logger.Debug("device read stopped",
					slog.String("device", d.info.Path),
					slog.String("error", err.Error()),
				)
			}

			return
		}

		for off := 0; off+rawEventSize <= n; off += rawEventSize {
			chunk := buf[off : off+rawEventSize]
			typ := binary.NativeEndian.Uint16(chunk[rawEventSize-8:])
			code := binary.NativeEndian.Uint16(chunk[rawEventSize-6:])
			value := int32(binary.NativeEndian.Uint32(chunk[rawEventSize-4:])) //nolint:gosec // G115: evdev value is a signed 32-bit field

			if ev, ok := tr.translate(typ, code, value); ok {
				if !m.deliver(ev, d.closing) {
					return
				}
			}
		}
	}
}

// Info returns what the device was opened as.
func (d *Device) Info() Info {
	return d.info
}

// Exclusive reports whether the grab succeeded.
func (d *Device) Exclusive() bool {
	return d.exclusive
}

// Close releases the grab and the file descriptor and waits for the reader.
func (d *Device) Close() error {
	select {
	case <-d.closing:
		return nil
	default:
	}

	if d.exclusive {
		if conn, err := d.file.SyscallConn(); err == nil {
			_ = grab(conn, false)
		}
	}

	close(d.closing)

	err := d.file.Close()
	<-d.done

	if err != nil {
		return fmt.Errorf("close %s: %w", d.info.Path, err)
	}

	return nil
}
