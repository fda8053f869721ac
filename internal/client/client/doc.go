// Package client is the networked side of a user device.
//
// GRPCClient implements the device's Authority and Gateway peers over gRPC:
// it caches the gateway id at connect time, applies a per-call timeout,
// keeps the session ticket returned by a successful handshake and attaches
// it to later calls, and maps gRPC status codes back to the sentinel errors
// in internal/common so callers can keep using errors.Is.
//
// Calls are not retried. A timed-out VerifyAuthentication may still have
// rotated the pseudonym on the gateway; the device keeps its old pseudonym
// in that case and has to re-register.
package client
