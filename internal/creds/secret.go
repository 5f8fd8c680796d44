// Package creds implements credential secrecy (spec.md §9, "Credential
// secrecy") and the ordered per-host credential resolution described in
// spec.md §4.B.
package creds

import "encoding/json"

const elided = "********"

// Secret wraps a password so that accidental logging, printf'ing, or JSON
// marshaling never leaks the plaintext. The only way to recover the
// plaintext is Reveal, which every caller site should treat as a one-shot,
// deliberate act (building an SSH auth method, never writing to a log).
type Secret struct {
	value string
}

// NewSecret wraps a plaintext password.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Reveal returns the plaintext. Call this only at the point of use (e.g.
// handing to ssh.Password), never to build a log message.
func (s Secret) Reveal() string {
	return s.value
}

// Empty reports whether no password was set.
func (s Secret) Empty() bool {
	return s.value == ""
}

// String implements fmt.Stringer with an elided marker so %v/%s never
// exposes the plaintext.
func (s Secret) String() string {
	if s.Empty() {
		return ""
	}
	return elided
}

// MarshalJSON elides the value, so a Secret embedded in a struct that's
// accidentally JSON-encoded (e.g. into a debug dump) still can't leak it.
func (s Secret) MarshalJSON() ([]byte, error) {
	if s.Empty() {
		return json.Marshal("")
	}
	return json.Marshal(elided)
}

// UnmarshalYAML accepts a plain YAML scalar and wraps it as a Secret.
func (s *Secret) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	s.value = raw
	return nil
}

// MarshalYAML elides the value on the way back out, consistent with
// MarshalJSON.
func (s Secret) MarshalYAML() (interface{}, error) {
	if s.Empty() {
		return "", nil
	}
	return elided, nil
}
