package listener

import (
	"fmt"
	"net"
	"os"
	"strconv"
)

const systemdSocketFD = 3

type SystemdSocketProvider struct {
	getenv func(string) string
	pid    func() int
}

var _ Provider = (*SystemdSocketProvider)(nil)

func NewSystemdSocketProvider() *SystemdSocketProvider {
	return &SystemdSocketProvider{getenv: os.Getenv, pid: os.Getpid}
}

func (p *SystemdSocketProvider) Create() (net.Listener, error) {
	listenFds := p.getenv("LISTEN_FDS")
	if listenFds == "" {
		return nil, fmt.Errorf("no LISTEN_FDS environment variable from systemd")
	}

	numFds, err := strconv.Atoi(listenFds)
	if err != nil {
		return nil, fmt.Errorf("invalid LISTEN_FDS value: %w", err)
	}

	if numFds < 1 {
		return nil, fmt.Errorf("no sockets passed from systemd")
	}

	file := os.NewFile(systemdSocketFD, "systemd-socket")
	if file == nil {
		return nil, fmt.Errorf("no socket passed from systemd on FD %d", systemdSocketFD)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat systemd socket: %w", err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		return nil, fmt.Errorf("file descriptor %d is not a socket", systemdSocketFD)
	}

	listener, err := net.FileListener(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create listener from systemd socket: %w", err)
	}

	return listener, nil
}

func (p *SystemdSocketProvider) Close() error {
	return nil
}

func (p *SystemdSocketProvider) ActivationType() string {
	return "systemd"
}

func IsSystemdSocketActivation() bool {
	return isSystemdActivation(os.Getenv, os.Getpid)
}

func isSystemdActivation(getenv func(string) string, pid func() int) bool {
	if getenv("LISTEN_FDS") == "" {
		return false
	}
	return getenv("LISTEN_PID") == strconv.Itoa(pid())
}
