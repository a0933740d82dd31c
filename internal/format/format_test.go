package format

import (
	"testing"
)

func TestDefaultRegistryWeights(t *testing.T) {
	r := Default()

	tests := []struct {
		name   string
		weight int
		open   bool
	}{
		{"CSV", 3, true},
		{"XLS", 2, false},
		{"PDF", 1, true},
	}

	for _, tt := range tests {
		f, ok := r.ByDisplayName(tt.name)
		if !ok {
			t.Fatalf("expected %s to be a known format", tt.name)
		}
		if f.Weight != tt.weight {
			t.Errorf("expected %s weight %d, got %d", tt.name, tt.weight, f.Weight)
		}
		if f.Open != tt.open {
			t.Errorf("expected %s open=%v, got %v", tt.name, tt.open, f.Open)
		}
	}
}

func TestByDisplayNameIgnoresCase(t *testing.T) {
	f, ok := Default().ByDisplayName("csv")
	if !ok || f.DisplayName != "CSV" {
		t.Errorf("expected CSV, got %v", f)
	}

	if _, ok := Default().ByDisplayName("ZAR"); ok {
		t.Error("expected ZAR to be unknown")
	}
}

func TestByExtension(t *testing.T) {
	r := Default()

	tests := map[string]string{
		"xls":     "XLS",
		"XLSX":    "XLS",
		".csv":    "CSV",
		"csv.zip": "CSV Zip",
		"zip":     "ZIP",
		"htm":     "HTML",
	}

	for ext, want := range tests {
		f, ok := r.ByExtension(ext)
		if !ok {
			t.Errorf("expected extension %q to resolve to %s", ext, want)
			continue
		}
		if f.DisplayName != want {
			t.Errorf("extension %q: expected %s, got %s", ext, want, f.DisplayName)
		}
	}

	if _, ok := r.ByExtension("zar"); ok {
		t.Error("expected zar to be unknown")
	}
}

func TestByFreeText(t *testing.T) {
	r := Default()

	tests := map[string]string{
		"Excel":                    "XLS",
		"XLS":                      "XLS",
		" comma separated values ": "CSV",
		"text/csv":                 "CSV",
		".pdf":                     "PDF",
		"Word":                     "DOC",
	}

	for text, want := range tests {
		f, ok := r.ByFreeText(text)
		if !ok {
			t.Errorf("expected %q to resolve to %s", text, want)
			continue
		}
		if f.DisplayName != want {
			t.Errorf("%q: expected %s, got %s", text, want, f.DisplayName)
		}
	}

	for _, text := range []string{"", "   ", "ZAR"} {
		if f, ok := r.ByFreeText(text); ok {
			t.Errorf("expected %q to be unknown, got %s", text, f.DisplayName)
		}
	}
}

func TestByMIMETypeIgnoresParameters(t *testing.T) {
	f, ok := Default().ByMIMEType("text/plain; charset=utf-8")
	if !ok || f.DisplayName != "TXT" {
		t.Errorf("expected TXT, got %v", f)
	}
}

func TestParseRejectsBadWeight(t *testing.T) {
	_, err := Parse([]byte("- name: FOO\n  extensions: [foo]\n  weight: 5\n"))
	if err == nil {
		t.Error("expected error for weight out of range")
	}
}

func TestNewRejectsDuplicateName(t *testing.T) {
	_, err := New([]*Descriptor{
		{DisplayName: "CSV", Extensions: []string{"csv"}},
		{DisplayName: "csv", Extensions: []string{"txt"}},
	})
	if err == nil {
		t.Error("expected error for duplicate display name")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	r := Default()
	all := r.All()
	if len(all) == 0 {
		t.Fatal("expected formats")
	}
	all[0] = nil
	if r.All()[0] == nil {
		t.Error("expected All to return a copy")
	}
}
