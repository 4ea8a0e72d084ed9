package gateway

import (
	"strings"
	"sync"

	"rental-app/config"
	"rental-app/internal/domain/billing"
)

var (
	mu        sync.Mutex
	providers = map[string]Provider{}
)

// GetProvider resolves the active gateway adapter. Precedence: explicit
// override > ACTIVE_GATEWAY from the environment > "stripe". Adapters are
// constructed once and cached.
func GetProvider(override string) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(override))
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(config.ACTIVE_GATEWAY))
	}
	if name == "" {
		name = billing.GatewayStripe
	}

	mu.Lock()
	defer mu.Unlock()

	if p, ok := providers[name]; ok {
		return p, nil
	}

	var (
		p   Provider
		err error
	)
	switch name {
	case billing.GatewayStripe:
		p, err = NewStripeAdapter()
	case billing.GatewayASAAS:
		p, err = NewASAASAdapter()
	default:
		return nil, &UnsupportedGatewayError{Name: name}
	}
	if err != nil {
		return nil, err
	}

	providers[name] = p
	return p, nil
}

// ResetProviders drops cached adapters so configuration changes take effect.
func ResetProviders() {
	mu.Lock()
	defer mu.Unlock()
	providers = map[string]Provider{}
}
