package common

// SessionTokenHeaderName is the gRPC metadata key carrying the session ticket
// a gateway issues after a successful mutual authentication.
const SessionTokenHeaderName = "session_token"

// DefaultGatewayID is the gateway identity used by the binaries when none is
// configured.
const DefaultGatewayID = "GW1"
