package profile

import "testing"

func TestValidUsername(t *testing.T) {
	cases := []struct {
		username string
		want     bool
	}{
		{"abc", true},
		{"user123", true},
		{"a1b2c3d4e5f6g7h8i9j0", true}, // exactly 20
		{"ab", false},                  // too short
		{"a1b2c3d4e5f6g7h8i9j0x", false}, // 21 chars
		{"", false},
		{"User", false},      // uppercase
		{"user name", false}, // space
		{"user-1", false},    // hyphen
		{"usér", false},      // non-ascii
		{"123", true},
	}

	for _, tc := range cases {
		if got := ValidUsername(tc.username); got != tc.want {
			t.Errorf("ValidUsername(%q) = %v, want %v", tc.username, got, tc.want)
		}
	}
}
