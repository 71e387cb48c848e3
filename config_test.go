package main

import (
	"testing"
)

func TestDebugFromEnv(t *testing.T) {
	tests := []struct {
		v    string
		want bool
	}{
		{"", false},
		{"1", true},
		{"true", true},
		{"0", false},
		{"yes please", false},
	}
	for _, tt := range tests {
		t.Setenv(EnvDebug, tt.v)
		if got := debugFromEnv(); got != tt.want {
			t.Errorf("%s=%q: debugFromEnv() = %v, want %v", EnvDebug, tt.v, got, tt.want)
		}
	}
}

func TestDefaultLaunchConfig(t *testing.T) {
	c := GetDefaultLaunchConfig()
	if c.Policy == nil || c.Policy.Name != "lenient" {
		t.Errorf("default policy %v", c.Policy)
	}
	if c.Logger == nil || c.exec == nil {
		t.Error("default config incomplete")
	}
}
