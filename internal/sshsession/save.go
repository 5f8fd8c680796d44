package sshsession

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/netcfgbu/netcfgbu-go/internal/config"
	"github.com/netcfgbu/netcfgbu-go/internal/linter"
)

// Save implements phase 3 (spec.md §4.E): decode as UTF-8 (invalid
// sequences dropped), strip \r, lint if the OS profile references one,
// then write atomically with a trailing newline.
func Save(raw []byte, osProfile config.OSNameSpec, linters map[string]config.LinterSpec, configsDir, hostName string) error {
	text := decodeUTF8Lossy(raw)
	text = stripCR(text)

	if osProfile.Linter != "" {
		if spec, ok := linters[osProfile.Linter]; ok {
			linted := linter.Lint(text, spec)
			if linted == text {
				log.Printf("[linter] %s: no change", hostName)
			}
			text = linted
		}
	}

	if len(text) == 0 || text[len(text)-1] != '\n' {
		text += "\n"
	}

	path := filepath.Join(configsDir, hostName+".cfg")
	return atomicWrite(path, []byte(text))
}

// decodeUTF8Lossy decodes raw as UTF-8, dropping any invalid byte
// sequences rather than failing (spec.md §4.E "ignoring invalid
// sequences" — device output may contain stray non-UTF-8 bytes).
func decodeUTF8Lossy(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	out := make([]byte, 0, len(raw))
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r == utf8.RuneError && size <= 1 {
			raw = raw[1:]
			continue
		}
		out = append(out, raw[:size]...)
		raw = raw[size:]
	}
	return string(out)
}

// atomicWrite writes data to a temp sibling file and renames it into
// place, so a concurrent reader never observes a partial config
// (spec.md §3 invariant: "Captured config is written atomically").
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := config.EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s -> %s: %w", tmpName, path, err)
	}
	return nil
}
