package auth

import (
	"context"
	"net"
)

type TransportType string

const (
	TransportUnix TransportType = "unix"
	TransportTCP  TransportType = "tcp"
)

type transportKey struct{}

func TransportFromContext(ctx context.Context) TransportType {
	transport, _ := ctx.Value(transportKey{}).(TransportType)
	return transport
}

func WithTransport(ctx context.Context, transport TransportType) context.Context {
	return context.WithValue(ctx, transportKey{}, transport)
}

// ConnContext tags every request on c with the transport it arrived on. It is
// meant for http.Server.ConnContext.
func ConnContext(ctx context.Context, c net.Conn) context.Context {
	if c.LocalAddr().Network() == "unix" {
		return WithTransport(ctx, TransportUnix)
	}
	return WithTransport(ctx, TransportTCP)
}
