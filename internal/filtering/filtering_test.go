package filtering

import "testing"

var fields = []string{"host", "ipaddr", "os_name", "username", "password"}

func TestIncludeExcludeScenario(t *testing.T) {
	records := []Record{
		{"os_name": "eos", "host": "switch1.nyc1"},
		{"os_name": "ios", "host": "switch1.nyc1"},
		{"os_name": "eos", "host": "switch1.dc1"},
	}

	incl, err := Build([]string{"os_name=eos", "host=.*nyc1"}, fields, Include)
	if err != nil {
		t.Fatalf("Build include: %v", err)
	}
	wantIncl := []bool{true, false, false}
	for i, rec := range records {
		if got := incl.Match(rec); got != wantIncl[i] {
			t.Errorf("include record %d: got %v, want %v", i, got, wantIncl[i])
		}
	}

	excl, err := Build([]string{"os_name=eos", "host=.*nyc1"}, fields, Exclude)
	if err != nil {
		t.Fatalf("Build exclude: %v", err)
	}
	wantExcl := []bool{false, false, true}
	for i, rec := range records {
		if got := excl.Match(rec); got != wantExcl[i] {
			t.Errorf("exclude record %d: got %v, want %v", i, got, wantExcl[i])
		}
	}
}

func TestCIDRFilter(t *testing.T) {
	records := []Record{
		{"ipaddr": "10.10.0.2"},
		{"ipaddr": "10.10.0.3"},
		{"ipaddr": "10.10.0.4"},
	}
	f, err := Build([]string{"ipaddr=10.10.0.2/31"}, fields, Include)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []bool{true, true, false}
	for i, rec := range records {
		if got := f.Match(rec); got != want[i] {
			t.Errorf("record %d: got %v, want %v", i, got, want[i])
		}
	}
}

func TestEmptyConstraintsKeepAll(t *testing.T) {
	records := []Record{{"os_name": "eos"}, {"os_name": "ios"}}
	for _, mode := range []Mode{Include, Exclude} {
		f, err := Build(nil, fields, mode)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		for i, rec := range records {
			if !f.Match(rec) {
				t.Errorf("mode %v record %d: expected kept with no constraints", mode, i)
			}
		}
	}
}

func TestInvalidFieldName(t *testing.T) {
	_, err := Build([]string{"bogus_field=foo"}, fields, Include)
	if err == nil {
		t.Fatal("expected error for unknown field keyword")
	}
}

func TestInvalidRegex(t *testing.T) {
	_, err := Build([]string{"host=(unterminated"}, fields, Include)
	if err == nil {
		t.Fatal("expected error for invalid regex")
	}
}

func TestSingleIPBehavesAsSlash32(t *testing.T) {
	f, err := Build([]string{"ipaddr=10.10.0.2"}, fields, Include)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !f.Match(Record{"ipaddr": "10.10.0.2"}) {
		t.Error("expected exact match to pass")
	}
	if f.Match(Record{"ipaddr": "10.10.0.3"}) {
		t.Error("expected non-matching address to fail")
	}
}
