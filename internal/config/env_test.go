package config

import "testing"

func TestGetEnv(t *testing.T) {
	t.Setenv("HS_ADDR", ":9000")
	if got := GetEnv("HS_ADDR", ":8080"); got != ":9000" {
		t.Errorf("expected :9000, got %q", got)
	}
	if got := GetEnv("HS_UNSET_KEY", ":8080"); got != ":8080" {
		t.Errorf("expected fallback, got %q", got)
	}

	// set but empty is still set
	t.Setenv("HS_EMPTY", "")
	if got := GetEnv("HS_EMPTY", "x"); got != "" {
		t.Errorf("expected empty value, got %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("HS_TICK", "20")
	if got := GetEnvInt("HS_TICK", 16); got != 20 {
		t.Errorf("expected 20, got %d", got)
	}
	t.Setenv("HS_TICK", "fast")
	if got := GetEnvInt("HS_TICK", 16); got != 16 {
		t.Errorf("bad value should fall back, got %d", got)
	}
	if got := GetEnvInt("HS_UNSET_KEY", 7); got != 7 {
		t.Errorf("expected fallback, got %d", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	cases := map[string]bool{"1": true, "true": true, "yes": true, "off": false, "0": false}
	for in, want := range cases {
		t.Setenv("HS_MUTE", in)
		if got := GetEnvBool("HS_MUTE", !want); got != want {
			t.Errorf("%q: expected %v, got %v", in, want, got)
		}
	}
	t.Setenv("HS_MUTE", "maybe")
	if got := GetEnvBool("HS_MUTE", true); !got {
		t.Error("bad value should fall back")
	}
}
