package creds

import "testing"

func TestResolveOrder(t *testing.T) {
	global := Credential{Username: "admin", Password: NewSecret("admin-pw")}
	osCreds := []Credential{{Username: "os-user", Password: NewSecret("os-pw")}}
	extras := []Credential{{Username: "extra", Password: NewSecret("extra-pw")}}

	got, err := Resolve("hostuser", "hostpw", osCreds, global, extras)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{"hostuser", "os-user", "admin", "extra"}
	if len(got) != len(want) {
		t.Fatalf("got %d credentials, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Username != w {
			t.Errorf("position %d: got username %q, want %q", i, got[i].Username, w)
		}
	}
}

func TestResolveSkipsIncompleteHostCredential(t *testing.T) {
	global := Credential{Username: "admin", Password: NewSecret("admin-pw")}
	got, err := Resolve("hostuser", "", nil, global, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 1 || got[0].Username != "admin" {
		t.Fatalf("expected host credential to be skipped when password is empty, got %+v", got)
	}
}

func TestResolveEmptyFails(t *testing.T) {
	_, err := Resolve("", "", nil, Credential{}, nil)
	if err != ErrNoCredentials {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestSecretNeverPrintsPlaintext(t *testing.T) {
	s := NewSecret("super-secret")
	if s.String() == "super-secret" {
		t.Fatal("Secret.String() leaked plaintext")
	}
	if s.Reveal() != "super-secret" {
		t.Fatal("Reveal() should return the plaintext")
	}
}
