//go:build !linux

package device

// Probe is unavailable without evdev.
func (m *Manager) Probe(path string) (Info, error) {
	return Info{}, ErrUnsupported
}

// Device is an open input device.
type Device struct {
	info Info
}

// Open is unavailable without evdev.
func (m *Manager) Open(info Info, exclusive bool) (*Device, error) {
	return nil, ErrUnsupported
}

// Info returns what the device was opened as.
func (d *Device) Info() Info {
	return d.info
}

// Exclusive is always false without evdev.
func (d *Device) Exclusive() bool {
	return false
}

// Close is a no-op without evdev.
func (d *Device) Close() error {
	return nil
}
