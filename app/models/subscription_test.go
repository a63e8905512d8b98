package models

import (
	"testing"
	"time"
)

func TestSubscriptionIsExpired(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{name: "no expiry timestamp", sub: Subscription{}, want: false},
		{name: "expiry in the past", sub: Subscription{CreditsExpireAt: &past}, want: true},
		{name: "expiry in the future", sub: Subscription{CreditsExpireAt: &future}, want: false},
		{name: "expiry exactly now", sub: Subscription{CreditsExpireAt: &now}, want: false},
	}

	for _, tt := range tests {
		if got := tt.sub.IsExpired(now); got != tt.want {
			t.Fatalf("%s: IsExpired = %t, want %t", tt.name, got, tt.want)
		}
	}
}
