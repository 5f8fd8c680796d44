// Package hostkeys implements the Trust-On-First-Use host key store
// (SPEC_FULL.md §4.E.1): the default host key policy accepts and persists
// the first key seen per host, and rejects a later mismatch as a possible
// MITM, mirroring appliance/internal/sshexec's tofuHostKeyCallback but
// backed by modernc.org/sqlite instead of a flat file.
package hostkeys

import (
	"database/sql"
	"fmt"
	"log"
	"net"
	"sync"

	"golang.org/x/crypto/ssh"
	_ "modernc.org/sqlite"

	"github.com/netcfgbu/netcfgbu-go/internal/sshsession"
)

// Store is a sqlite-backed table of (host, key_type, fingerprint,
// first_seen) rows, one per host ever connected to.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates or opens the trust store database at path, creating its
// schema if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open host key store %s: %w", path, err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS host_keys (
	host        TEXT PRIMARY KEY,
	key_type    TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	first_seen  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create host key schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Callback returns an ssh.HostKeyCallback implementing TOFU against this
// store. A lookup failure (e.g. a transient sqlite error) behaves like
// first contact — the trust store is purely additive and never blocks a
// session (SPEC_FULL.md §4.E.1).
func (s *Store) Callback() ssh.HostKeyCallback {
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		host, _, err := net.SplitHostPort(hostname)
		if err != nil {
			host = hostname
		}
		return s.verify(host, key)
	}
}

func (s *Store) verify(host string, key ssh.PublicKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keyType := key.Type()
	fingerprint := ssh.FingerprintSHA256(key)

	var existingType, existingFingerprint string
	err := s.db.QueryRow(`SELECT key_type, fingerprint FROM host_keys WHERE host = ?`, host).
		Scan(&existingType, &existingFingerprint)

	switch err {
	case sql.ErrNoRows:
		if _, insertErr := s.db.Exec(
			`INSERT INTO host_keys (host, key_type, fingerprint) VALUES (?, ?, ?)`,
			host, keyType, fingerprint,
		); insertErr != nil {
			log.Printf("[hostkeys] TOFU: failed to persist key for %s: %v", host, insertErr)
		} else {
			log.Printf("[hostkeys] TOFU: trusting new key for %s (%s %s)", host, keyType, fingerprint)
		}
		return nil

	case nil:
		if existingType == keyType && existingFingerprint == fingerprint {
			return nil
		}
		log.Printf("[hostkeys] SECURITY: host key changed for %s (was %s %s, now %s %s)",
			host, existingType, existingFingerprint, keyType, fingerprint)
		return fmt.Errorf("%w: %s key changed from %s to %s", sshsession.ErrHostKeyNotVerifiable, host, existingFingerprint, fingerprint)

	default:
		log.Printf("[hostkeys] TOFU: lookup failed for %s, treating as first contact: %v", host, err)
		return nil
	}
}

// InsecureIgnore returns the permissive policy that reproduces the
// original implementation's known_hosts=None behavior
// (ssh_configs: {host_key_policy: insecure}).
func InsecureIgnore() ssh.HostKeyCallback {
	return ssh.InsecureIgnoreHostKey()
}
