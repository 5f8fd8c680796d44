package creds

import "fmt"

// Credential is a username/password pair, either as configured (loaded from
// YAML) or as resolved for a single trial against a host.
type Credential struct {
	Username string `yaml:"username" validate:"required"`
	Password Secret `yaml:"password" validate:"required"`
}

// ErrNoCredentials is returned by Resolve when the composed list is empty
// (spec.md §4.B: "If the list is empty the session fails immediately with
// NoCredentials").
var ErrNoCredentials = fmt.Errorf("no credentials available for host")

// Resolve builds the ordered credential list for one host per spec.md
// §4.B: host-record credential, then OS-profile credentials, then the
// global default, then global extras.
func Resolve(hostUsername, hostPassword string, osCreds []Credential, global Credential, extras []Credential) ([]Credential, error) {
	var out []Credential

	if hostUsername != "" && hostPassword != "" {
		out = append(out, Credential{Username: hostUsername, Password: NewSecret(hostPassword)})
	}

	for _, c := range osCreds {
		out = append(out, Credential{Username: c.Username, Password: c.Password})
	}

	if global.Username != "" && !global.Password.Empty() {
		out = append(out, Credential{Username: global.Username, Password: global.Password})
	}

	for _, c := range extras {
		out = append(out, Credential{Username: c.Username, Password: c.Password})
	}

	if len(out) == 0 {
		return nil, ErrNoCredentials
	}
	return out, nil
}
