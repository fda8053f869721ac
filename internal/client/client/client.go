package client

import "github.com/dmitrijs2005/gwauth/internal/client/device"

// Client is everything a device needs from the server.
type Client interface {
	device.Authority
	device.Gateway
	SessionToken() string
	Close() error
}

var _ Client = (*GRPCClient)(nil)
