package listener

import (
	"fmt"
	"net"
)

type Provider interface {
	Create() (net.Listener, error)
	Close() error
	ActivationType() string
}

// Detect picks a listener for the serve command. An explicit unix socket wins
// over a tcp address; systemd socket activation is used when neither is set.
func Detect(address, unixSocket string) (Provider, error) {
	if unixSocket != "" {
		return NewUnixSocketProvider(unixSocket), nil
	}

	if address != "" {
		return NewTCPListenerProvider(address), nil
	}

	if IsSystemdSocketActivation() {
		return NewSystemdSocketProvider(), nil
	}

	return nil, fmt.Errorf("no listener configured: specify a tcp address or a unix socket")
}
