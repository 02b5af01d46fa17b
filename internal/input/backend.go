package input

import (
	"github.com/kioskware/gridlaunch/internal/device"
	"github.com/kioskware/gridlaunch/internal/launch"
)

type managerBackend struct {
	m *device.Manager
}

// ManagerBackend adapts a device manager to Backend. Keyboards are never
// grabbed: the terminal reads the same keys.
func ManagerBackend(m *device.Manager) Backend {
	return managerBackend{m: m}
}

func (b managerBackend) Probe(path string) (device.Info, error) {
	return b.m.Probe(path)
}

func (b managerBackend) Open(info device.Info, exclusive bool) (Handle, error) {
	d, err := b.m.Open(info, exclusive && info.Role != launch.RoleKeyboard)
	if err != nil {
		return nil, err
	}

	return d, nil
}
