package gateway

import (
	"testing"

	"rental-app/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProvider(t *testing.T) {
	config.STRIPE_SECRET_KEY = "sk_test_123"
	config.ASAAS_API_KEY = "asaas_test_123"
	config.ASAAS_BASE_URL = ""
	t.Cleanup(func() {
		config.STRIPE_SECRET_KEY = ""
		config.ASAAS_API_KEY = ""
		config.ACTIVE_GATEWAY = ""
		ResetProviders()
	})

	t.Run("returns adapter matching the requested name", func(t *testing.T) {
		ResetProviders()
		for _, name := range []string{"stripe", "asaas"} {
			p, err := GetProvider(name)
			require.NoError(t, err)
			assert.Equal(t, name, p.Name())
		}
	})

	t.Run("unsupported name fails", func(t *testing.T) {
		ResetProviders()
		_, err := GetProvider("paypal")
		require.Error(t, err)
		var unsupported *UnsupportedGatewayError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, "paypal", unsupported.Name)
	})

	t.Run("environment default applies when no override", func(t *testing.T) {
		ResetProviders()
		config.ACTIVE_GATEWAY = "asaas"
		p, err := GetProvider("")
		require.NoError(t, err)
		assert.Equal(t, "asaas", p.Name())
	})

	t.Run("falls back to stripe when nothing configured", func(t *testing.T) {
		ResetProviders()
		config.ACTIVE_GATEWAY = ""
		p, err := GetProvider("")
		require.NoError(t, err)
		assert.Equal(t, "stripe", p.Name())
	})

	t.Run("override beats environment default", func(t *testing.T) {
		ResetProviders()
		config.ACTIVE_GATEWAY = "stripe"
		p, err := GetProvider("asaas")
		require.NoError(t, err)
		assert.Equal(t, "asaas", p.Name())
	})

	t.Run("cached instance is reused", func(t *testing.T) {
		ResetProviders()
		a, err := GetProvider("stripe")
		require.NoError(t, err)
		b, err := GetProvider("stripe")
		require.NoError(t, err)
		assert.Same(t, a, b)
	})

	t.Run("missing secret fails fast with ConfigError", func(t *testing.T) {
		ResetProviders()
		config.ASAAS_API_KEY = ""
		defer func() { config.ASAAS_API_KEY = "asaas_test_123" }()

		_, err := GetProvider("asaas")
		require.Error(t, err)
		var ce *ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "ASAAS_API_KEY", ce.Key)
	})
}
