package util

import (
	"errors"
	"net/netip"
	"testing"
)

func TestIsPublicAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:4700::1111", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.9", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"0.0.0.0", false},
		{"100.64.0.1", false},
		{"224.0.0.1", false},
		{"::ffff:127.0.0.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := IsPublicAddr(netip.MustParseAddr(tt.addr)); got != tt.want {
				t.Errorf("IsPublicAddr(%s) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestPublicOnlyControl(t *testing.T) {
	if err := PublicOnlyControl("tcp4", "93.184.216.34:443", nil); err != nil {
		t.Errorf("public address rejected: %v", err)
	}

	for _, addr := range []string{"127.0.0.1:6379", "[::1]:80", "169.254.169.254:80", "not-an-address"} {
		err := PublicOnlyControl("tcp", addr, nil)
		if !errors.Is(err, ErrNonPublicAddress) {
			t.Errorf("PublicOnlyControl(%q) = %v, want ErrNonPublicAddress", addr, err)
		}
	}
}
