package listener

import (
	"fmt"
	"net"
)

type TCPProvider struct {
	address string
}

var _ Provider = (*TCPProvider)(nil)

func NewTCPListenerProvider(address string) *TCPProvider {
	return &TCPProvider{
		address: address,
	}
}

func (p *TCPProvider) Create() (net.Listener, error) {
	listener, err := net.Listen("tcp", p.address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", p.address, err)
	}

	return listener, nil
}

func (p *TCPProvider) Close() error {
	return nil
}

func (p *TCPProvider) ActivationType() string {
	return "tcp"
}
