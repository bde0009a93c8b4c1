package cli

import (
	"context"
	"strings"
	"testing"
)

func TestParseToggleValue(t *testing.T) {
	tests := []struct {
		value   string
		enabled bool
		wantErr bool
	}{
		{"on", true, false},
		{"enabled", true, false},
		{"true", true, false},
		{"1", true, false},
		{"ON", true, false},
		{"off", false, false},
		{"disabled", false, false},
		{"false", false, false},
		{"0", false, false},
		{"maybe", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			enabled, err := parseToggleValue(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseToggleValue(%q) should fail", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseToggleValue(%q) error = %v", tt.value, err)
			}
			if enabled != tt.enabled {
				t.Errorf("parseToggleValue(%q) = %v, want %v", tt.value, enabled, tt.enabled)
			}
		})
	}
}

func TestSetRejectsInvalidValue(t *testing.T) {
	app := &App{}

	err := app.Set(context.Background(), "killswitch", "maybe")
	if err == nil {
		t.Fatal("Set() should reject an invalid value")
	}
	if !strings.Contains(err.Error(), "maybe") {
		t.Errorf("error %q should name the bad value", err)
	}
}
