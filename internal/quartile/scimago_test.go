package quartile

import (
	"strings"
	"testing"
)

const sampleCSV = `Rank;Sourceid;Title;Type;Issn;SJR;SJR Best Quartile;H index
1;28773;"Ca-A Cancer Journal for Clinicians";journal;15424863, 00079235;"145,004";Q1;223
2;19434;"Nature Reviews Molecular Cell Biology";journal;14710072, 14710080;"30,970";Q1;523
3;21100838131;eLife;journal;2050084X;"7,455";Q1;271
4;12464;PLoS Computational Biology;journal;15537358, 1553734X;"2,120";Q2;224
5;23010;Systematic Biology;journal;10635157, 1076836X;"4,001";Q1;181
6;77777;Regional Methods Quarterly;journal;11112222;"0,400";Q4;12
7;99999;Predatory Press Weekly;journal;00000000;"0,101";-;3
8;88888;Truncated Row
`

func TestParseRankings(t *testing.T) {
	rankings, err := ParseRankings(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseRankings() error = %v", err)
	}

	// Unranked and truncated rows are dropped.
	if len(rankings) != 6 {
		t.Fatalf("ParseRankings() len = %d, want 6", len(rankings))
	}

	first := rankings[0]
	if first.Title != "Ca-A Cancer Journal for Clinicians" {
		t.Errorf("Title = %q, want quoted title unwrapped", first.Title)
	}
	if first.Norm != "ca-a cancer journal for clinicians" {
		t.Errorf("Norm = %q, want normalized title", first.Norm)
	}
	if first.Quartile != "Q1" {
		t.Errorf("Quartile = %q, want Q1", first.Quartile)
	}

	for _, r := range rankings {
		if r.Title == "Predatory Press Weekly" {
			t.Error("ParseRankings() kept an unranked journal")
		}
	}
}

func TestParseRankings_HeaderCaseInsensitive(t *testing.T) {
	csv := "rank;title;sjr best quartile\n1;eLife;Q1\n"

	rankings, err := ParseRankings(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseRankings() error = %v", err)
	}
	if len(rankings) != 1 || rankings[0].Norm != "elife" {
		t.Errorf("ParseRankings() = %v, want single elife ranking", rankings)
	}
}

func TestParseRankings_MissingColumn(t *testing.T) {
	csv := "Rank;Title;H index\n1;eLife;271\n"

	if _, err := ParseRankings(strings.NewReader(csv)); err == nil {
		t.Error("ParseRankings() without quartile column should return error")
	}
}

func TestParseRankings_Empty(t *testing.T) {
	if _, err := ParseRankings(strings.NewReader("")); err == nil {
		t.Error("ParseRankings() on empty input should return error")
	}
}

func TestParseRankings_QuartileVariants(t *testing.T) {
	csv := "Title;SJR Best Quartile\nA Journal;Q3\nB Journal;\nC Journal;Q4\nD Journal;q1\n"

	rankings, err := ParseRankings(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseRankings() error = %v", err)
	}
	// Blank and lowercase tiers are not valid quartiles.
	if len(rankings) != 2 {
		t.Fatalf("ParseRankings() len = %d, want 2", len(rankings))
	}
	if rankings[0].Quartile != "Q3" || rankings[1].Quartile != "Q4" {
		t.Errorf("quartiles = %s, %s, want Q3, Q4", rankings[0].Quartile, rankings[1].Quartile)
	}
}
