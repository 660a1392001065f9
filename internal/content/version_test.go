package content

import "testing"

func TestNextVersion(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"1.0", "1.1", false},
		{"1.9", "2.0", false},
		{"12.4", "12.5", false},
		{"1.10", "", true},
		{"1", "", true},
		{"1.0.0", "", true},
		{"abc", "", true},
	}
	for _, tt := range tests {
		got, err := NextVersion(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NextVersion(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NextVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompareVersions(t *testing.T) {
	if CompareVersions("2.0", "1.9") != 1 {
		t.Error("2.0 should be newer than 1.9")
	}
	if CompareVersions("1.1", "1.1") != 0 {
		t.Error("equal versions should compare 0")
	}
	if CompareVersions("bogus", "1.0") != -1 {
		t.Error("invalid versions sort first")
	}
}
