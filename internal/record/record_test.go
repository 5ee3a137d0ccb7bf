package record

import (
	"strings"
	"testing"
)

func TestParseExport_Valid(t *testing.T) {
	data := []byte(`[
		{
			"external_id": "36912345",
			"title": "Gut microbiome dynamics",
			"year": 2021,
			"journal": "Nature Microbiology",
			"authors": ["Maria Lopez", "James Chen", "Ana Silva"]
		}
	]`)

	pubs, errs := ParseExport(data)
	if len(errs) != 0 {
		t.Fatalf("ParseExport() errors = %v, want none", errs)
	}
	if len(pubs) != 1 {
		t.Fatalf("ParseExport() returned %d records, want 1", len(pubs))
	}

	pub := pubs[0]
	if pub.ExternalID != "36912345" {
		t.Errorf("ExternalID = %q, want %q", pub.ExternalID, "36912345")
	}
	if pub.Year != 2021 {
		t.Errorf("Year = %d, want 2021", pub.Year)
	}
	if pub.Journal != "Nature Microbiology" {
		t.Errorf("Journal = %q, want %q", pub.Journal, "Nature Microbiology")
	}
	if len(pub.Authors) != 3 {
		t.Errorf("len(Authors) = %d, want 3", len(pub.Authors))
	}
}

func TestParseExport_FlexibleFields(t *testing.T) {
	// external_id as number, year as string
	data := []byte(`[
		{"external_id": 36912345, "title": "T", "year": "2020", "journal": "J", "authors": ["A B"]}
	]`)

	pubs, errs := ParseExport(data)
	if len(errs) != 0 {
		t.Fatalf("ParseExport() errors = %v, want none", errs)
	}
	if pubs[0].ExternalID != "36912345" {
		t.Errorf("ExternalID = %q, want %q", pubs[0].ExternalID, "36912345")
	}
	if pubs[0].Year != 2020 {
		t.Errorf("Year = %d, want 2020", pubs[0].Year)
	}
}

func TestParseExport_BadEntriesSkipped(t *testing.T) {
	data := []byte(`[
		{"external_id": "1", "title": "ok", "year": 2019, "authors": ["A B"]},
		{"title": "no id", "year": 2019, "authors": ["C D"]},
		{"external_id": "3", "title": "bad year", "year": "twenty", "authors": ["E F"]},
		{"external_id": "4", "title": "ok too", "year": 2020, "authors": []}
	]`)

	pubs, errs := ParseExport(data)
	if len(pubs) != 2 {
		t.Errorf("ParseExport() returned %d records, want 2", len(pubs))
	}
	if len(errs) != 2 {
		t.Fatalf("ParseExport() returned %d errors, want 2", len(errs))
	}
	if !strings.Contains(errs[0].Error(), "external_id") {
		t.Errorf("first error = %v, want missing external_id", errs[0])
	}
	if !strings.Contains(errs[1].Error(), "invalid year") {
		t.Errorf("second error = %v, want invalid year", errs[1])
	}
}

func TestParseExport_EmptyAuthorsAllowed(t *testing.T) {
	data := []byte(`[{"external_id": "9", "title": "T", "year": 2022, "journal": "J", "authors": []}]`)

	pubs, errs := ParseExport(data)
	if len(errs) != 0 {
		t.Fatalf("ParseExport() errors = %v, want none", errs)
	}
	if len(pubs) != 1 || len(pubs[0].Authors) != 0 {
		t.Errorf("want one record with zero authors, got %+v", pubs)
	}
}

func TestParseExport_MalformedJSON(t *testing.T) {
	pubs, errs := ParseExport([]byte(`{"not": "an array"}`))
	if pubs != nil {
		t.Errorf("ParseExport() records = %v, want nil", pubs)
	}
	if len(errs) != 1 {
		t.Errorf("ParseExport() returned %d errors, want 1", len(errs))
	}
}

func TestFlexibleString_Null(t *testing.T) {
	data := []byte(`[{"external_id": "5", "title": "T", "year": null, "authors": []}]`)

	pubs, errs := ParseExport(data)
	if len(pubs) != 0 {
		t.Errorf("ParseExport() returned %d records, want 0", len(pubs))
	}
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "year") {
		t.Errorf("ParseExport() errors = %v, want one missing-year error", errs)
	}
}
