package utils

import "testing"

func TestEnvDefaults(t *testing.T) {
	t.Setenv("SOIL_TEST_STR", "")
	if got := Env("SOIL_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("Env empty = %q, want fallback", got)
	}
	t.Setenv("SOIL_TEST_STR", "set")
	if got := Env("SOIL_TEST_STR", "fallback"); got != "set" {
		t.Errorf("Env set = %q, want set", got)
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("SOIL_TEST_INT", "12")
	if got := EnvInt("SOIL_TEST_INT", 5); got != 12 {
		t.Errorf("EnvInt = %d, want 12", got)
	}
	t.Setenv("SOIL_TEST_INT", "twelve")
	if got := EnvInt("SOIL_TEST_INT", 5); got != 5 {
		t.Errorf("EnvInt bad value = %d, want default 5", got)
	}
}

func TestEnvFloat(t *testing.T) {
	t.Setenv("SOIL_TEST_FLOAT", "0.25")
	if got := EnvFloat("SOIL_TEST_FLOAT", 0.1); got != 0.25 {
		t.Errorf("EnvFloat = %g, want 0.25", got)
	}
	t.Setenv("SOIL_TEST_FLOAT", "")
	if got := EnvFloat("SOIL_TEST_FLOAT", 0.1); got != 0.1 {
		t.Errorf("EnvFloat missing = %g, want default 0.1", got)
	}
}

func TestEnvBool(t *testing.T) {
	for _, v := range []string{"1", "true", "yes"} {
		t.Setenv("SOIL_TEST_BOOL", v)
		if !EnvBool("SOIL_TEST_BOOL") {
			t.Errorf("EnvBool(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"", "0", "false", "off"} {
		t.Setenv("SOIL_TEST_BOOL", v)
		if EnvBool("SOIL_TEST_BOOL") {
			t.Errorf("EnvBool(%q) = true, want false", v)
		}
	}
}
