package models

import "testing"

func TestNormalizeConnectionState(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "connecting", want: ConnectionStatusConnecting},
		{in: "open", want: ConnectionStatusConnected},
		{in: "close", want: ConnectionStatusDisconnected},
		{in: "refused", want: ConnectionStatusDisconnected},
		{in: "", want: ConnectionStatusDisconnected},
	}

	for _, tt := range tests {
		if got := NormalizeConnectionState(tt.in); got != tt.want {
			t.Fatalf("NormalizeConnectionState(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
