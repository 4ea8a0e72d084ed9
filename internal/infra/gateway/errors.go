package gateway

import "fmt"

// ConfigError means a required secret/config value was absent at adapter
// construction. Fatal, not retryable.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return "missing required configuration: " + e.Key
}

// GatewayError is any non-success response from a remote gateway API. It
// carries the gateway's own error description when one was available.
type GatewayError struct {
	Gateway    string
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Gateway, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Gateway, e.Message)
}

// CheckoutError is a domain-specific failure creating a checkout or payment
// link, e.g. an unrecognized plan id. Surfaces to the user as a 400.
type CheckoutError struct {
	Reason string
}

func (e *CheckoutError) Error() string {
	return "checkout failed: " + e.Reason
}

// UnsupportedGatewayError means the requested gateway name has no adapter.
type UnsupportedGatewayError struct {
	Name string
}

func (e *UnsupportedGatewayError) Error() string {
	return "unsupported payment gateway: " + e.Name
}
