package gender

import "testing"

func TestDictionary_Lookup(t *testing.T) {
	d := NewDictionary()

	tests := []struct {
		name       string
		wantGender string
		wantP      float64
		wantOK     bool
	}{
		{"maria", Female, 1.0, true},
		{"john", Male, 0.0, true},
		{"kim", Female, 0.75, true},
		{"terry", Male, 0.25, true},
		{"alex", "", 0, false},   // ambiguous, falls through
		{"zorven", "", 0, false}, // absent
	}

	for _, tt := range tests {
		got, ok := d.Lookup(tt.name)
		if ok != tt.wantOK {
			t.Errorf("Lookup(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if got.Gender != tt.wantGender {
			t.Errorf("Lookup(%q) gender = %q, want %q", tt.name, got.Gender, tt.wantGender)
		}
		if got.PFemale == nil || *got.PFemale != tt.wantP {
			t.Errorf("Lookup(%q) p_female = %v, want %v", tt.name, got.PFemale, tt.wantP)
		}
		if got.Source != SourceDictionary {
			t.Errorf("Lookup(%q) source = %q, want %q", tt.name, got.Source, SourceDictionary)
		}
	}
}

func TestDictionary_Embedded(t *testing.T) {
	d := NewDictionary()
	if d.Len() < 100 {
		t.Errorf("embedded table has %d entries, want at least 100", d.Len())
	}
}

func TestParseDictionary_SkipsCommentsAndBlanks(t *testing.T) {
	d := parseDictionary("# header\n\nmaria female\nbadline\njohn male\n")
	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.Len())
	}
	if _, ok := d.Lookup("maria"); !ok {
		t.Error("Lookup(maria) missed after parse")
	}
}
