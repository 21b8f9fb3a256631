package version

import "testing"

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		build    string
		expected string
	}{
		{"", "0.1.0"},
		{"abc-123", "0.1.0+abc-123"},
		{"20261014.1", "0.1.0+20261014.1"},
		{"bad build", "0.1.0"},
		{"bad_build", "0.1.0"},
	}
	for _, test := range tests {
		version := formatVersion(0, 1, 0, test.build)
		if version != test.expected {
			t.Errorf("TestFormatVersion: expected %q for build %q, got %q", test.expected, test.build, version)
		}
	}

	if Version() != "0.1.0" {
		t.Errorf("TestFormatVersion: unexpected version %s", Version())
	}
}
