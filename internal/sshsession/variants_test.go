package sshsession

import "testing"

func TestVariantForDefaultsToBasic(t *testing.T) {
	v := variantFor("")
	if _, ok := v.(basicVariant); !ok {
		t.Errorf("expected basicVariant, got %T", v)
	}
	if v.requiresPTY() {
		t.Error("basic variant must not require a PTY on its own")
	}
}

func TestVariantForPromptLogin(t *testing.T) {
	v := variantFor("prompt-login")
	if _, ok := v.(promptLoginVariant); !ok {
		t.Errorf("expected promptLoginVariant, got %T", v)
	}
	if !v.requiresPTY() {
		t.Error("prompt-login variant must require a PTY")
	}
}

func TestVariantForUnknownNameFallsBackToBasic(t *testing.T) {
	v := variantFor("something-else")
	if _, ok := v.(basicVariant); !ok {
		t.Errorf("expected basicVariant fallback, got %T", v)
	}
}
