package inventory

import (
	"strings"
	"testing"
)

func TestParseSkipsCommentsAndBlank(t *testing.T) {
	data := `host,ipaddr,os_name
#switch-comment,10.0.0.1,eos
switch1,10.0.0.2,eos
switch2,10.0.0.3,ios
`
	hosts, header, err := parse(strings.NewReader(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(header) != 3 {
		t.Fatalf("expected 3 header columns, got %d", len(header))
	}
	if len(hosts) != 2 {
		t.Fatalf("expected 2 hosts (comment skipped), got %d", len(hosts))
	}
	if hosts[0]["host"] != "switch1" {
		t.Errorf("expected switch1 first, got %q", hosts[0]["host"])
	}
}

func TestParseRequiresHostColumn(t *testing.T) {
	data := "ipaddr,os_name\n10.0.0.1,eos\n"
	if _, _, err := parse(strings.NewReader(data)); err == nil {
		t.Fatal("expected error for missing host column")
	}
}

func TestHostNamePrefersIPAddr(t *testing.T) {
	h := Host{"host": "switch1", "ipaddr": "10.0.0.2"}
	if h.Name() != "10.0.0.2" {
		t.Errorf("expected ipaddr preferred, got %q", h.Name())
	}
	h2 := Host{"host": "switch1"}
	if h2.Name() != "switch1" {
		t.Errorf("expected host fallback, got %q", h2.Name())
	}
}
