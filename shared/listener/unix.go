package listener

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
)

type UnixSocketProvider struct {
	listener   net.Listener
	socketPath string
}

var _ Provider = (*UnixSocketProvider)(nil)

func NewUnixSocketProvider(socketPath string) *UnixSocketProvider {
	return &UnixSocketProvider{
		socketPath: socketPath,
	}
}

func (p *UnixSocketProvider) Create() (net.Listener, error) {
	_ = os.Remove(p.socketPath)
	listener, err := net.Listen("unix", p.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on unix socket %s: %w", p.socketPath, err)
	}

	p.listener = listener
	if err := os.Chmod(p.socketPath, 0660); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	return listener, nil
}

func (p *UnixSocketProvider) Close() error {
	if p.listener != nil {
		p.listener.Close()
	}

	err := os.Remove(p.socketPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (p *UnixSocketProvider) ActivationType() string {
	return "unix"
}
