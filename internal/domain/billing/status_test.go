package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeGatewayStatus(t *testing.T) {
	tests := []struct {
		name    string
		gateway string
		raw     string
		want    string
	}{
		{"stripe active", GatewayStripe, "active", StatusActive},
		{"stripe trialing", GatewayStripe, "trialing", StatusTrialing},
		{"stripe past_due", GatewayStripe, "past_due", StatusPastDue},
		{"stripe unpaid coerces to past_due", GatewayStripe, "unpaid", StatusPastDue},
		{"stripe canceled", GatewayStripe, "canceled", StatusCanceled},
		{"stripe incomplete_expired coerces to canceled", GatewayStripe, "incomplete_expired", StatusCanceled},
		{"stripe incomplete", GatewayStripe, "incomplete", StatusIncomplete},
		{"empty is none", GatewayStripe, "", StatusNone},
		{"whitespace is none", GatewayStripe, "  ", StatusNone},
		{"asaas uppercase active", GatewayASAAS, "ACTIVE", StatusActive},
		{"asaas expired", GatewayASAAS, "EXPIRED", StatusCanceled},
		{"asaas inactive", GatewayASAAS, "INACTIVE", StatusCanceled},
		{"asaas anything else is canceled", GatewayASAAS, "OVERDUE", StatusCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeGatewayStatus(tt.gateway, tt.raw))
		})
	}
}

func TestActiveSubscription(t *testing.T) {
	now := time.Now()

	sub := func(id uint, gw, status string, updated time.Time) Subscription {
		return Subscription{ID: id, GatewayName: gw, Status: status, UpdatedAt: updated}
	}

	t.Run("empty returns nil", func(t *testing.T) {
		assert.Nil(t, ActiveSubscription(nil, GatewayStripe))
	})

	t.Run("active on configured gateway wins over other active", func(t *testing.T) {
		rows := []Subscription{
			sub(1, GatewayStripe, StatusActive, now),
			sub(2, GatewayASAAS, StatusActive, now.Add(time.Hour)),
		}
		got := ActiveSubscription(rows, GatewayASAAS)
		require.NotNil(t, got)
		assert.Equal(t, uint(2), got.ID)
	})

	t.Run("any active beats trialing", func(t *testing.T) {
		rows := []Subscription{
			sub(1, GatewayStripe, StatusTrialing, now.Add(time.Hour)),
			sub(2, GatewayASAAS, StatusActive, now),
		}
		got := ActiveSubscription(rows, GatewayStripe)
		require.NotNil(t, got)
		assert.Equal(t, uint(2), got.ID)
	})

	t.Run("trialing beats canceled", func(t *testing.T) {
		rows := []Subscription{
			sub(1, GatewayStripe, StatusCanceled, now.Add(time.Hour)),
			sub(2, GatewayStripe, StatusTrialing, now),
		}
		got := ActiveSubscription(rows, GatewayStripe)
		require.NotNil(t, got)
		assert.Equal(t, uint(2), got.ID)
	})

	t.Run("falls back to most recently updated", func(t *testing.T) {
		rows := []Subscription{
			sub(1, GatewayStripe, StatusCanceled, now),
			sub(2, GatewayASAAS, StatusIncomplete, now.Add(time.Hour)),
		}
		got := ActiveSubscription(rows, GatewayStripe)
		require.NotNil(t, got)
		assert.Equal(t, uint(2), got.ID)
	})
}
