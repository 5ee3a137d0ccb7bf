package gender

import (
	"reflect"
	"testing"
)

func TestParseMapping_Strict(t *testing.T) {
	got := ParseMapping(`{"maria": "female", "john": "male", "wei": "unknown"}`)
	want := map[string]string{"maria": "female", "john": "male", "wei": "unknown"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseMapping() = %v, want %v", got, want)
	}
}

func TestParseMapping_FencedBlock(t *testing.T) {
	resp := "Here are the classifications:\n```json\n{\"maria\": \"female\", \"john\": \"male\"}\n```\nLet me know if you need more."
	got := ParseMapping(resp)
	if got["maria"] != "female" || got["john"] != "male" {
		t.Errorf("ParseMapping() = %v, want maria/john resolved", got)
	}
}

func TestParseMapping_FencedBlockNoLanguageTag(t *testing.T) {
	got := ParseMapping("```\n{\"maria\": \"female\"}\n```")
	if got["maria"] != "female" {
		t.Errorf("ParseMapping() = %v, want maria resolved", got)
	}
}

func TestParseMapping_TrailingComma(t *testing.T) {
	got := ParseMapping(`{"maria": "female", "john": "male",}`)
	if got["maria"] != "female" || got["john"] != "male" {
		t.Errorf("ParseMapping() = %v, want both names resolved", got)
	}
}

func TestParseMapping_FencedWithTrailingComma(t *testing.T) {
	resp := "```json\n{\n  \"maria\": \"female\",\n  \"john\": \"male\",\n}\n```"
	got := ParseMapping(resp)
	if got["maria"] != "female" || got["john"] != "male" {
		t.Errorf("ParseMapping() = %v, want both names resolved", got)
	}
}

func TestParseMapping_PairExtraction(t *testing.T) {
	// Broken beyond structural repair: the regex pass scavenges what it can.
	resp := `Sure! "maria": "female" and also "john": "male" {unbalanced`
	got := ParseMapping(resp)
	if got["maria"] != "female" || got["john"] != "male" {
		t.Errorf("ParseMapping() = %v, want pairs scavenged", got)
	}
}

func TestParseMapping_UppercaseLabels(t *testing.T) {
	got := ParseMapping(`{"Maria": "Female", "JOHN": "MALE"}`)
	if got["maria"] != "female" || got["john"] != "male" {
		t.Errorf("ParseMapping() = %v, want lowercased keys and labels", got)
	}
}

func TestParseMapping_UnrecognizedLabelsDropped(t *testing.T) {
	got := ParseMapping(`{"maria": "female", "pat": "nonbinary", "kim": "maybe"}`)
	if got["maria"] != "female" {
		t.Errorf("ParseMapping() = %v, want maria kept", got)
	}
	if _, ok := got["pat"]; ok {
		t.Errorf("ParseMapping() kept unrecognized label for pat: %v", got)
	}
	if _, ok := got["kim"]; ok {
		t.Errorf("ParseMapping() kept unrecognized label for kim: %v", got)
	}
}

func TestParseMapping_ProseAroundObject(t *testing.T) {
	got := ParseMapping(`The answer is {"maria": "female"} as requested.`)
	if got["maria"] != "female" {
		t.Errorf("ParseMapping() = %v, want maria resolved", got)
	}
}

func TestParseMapping_Hopeless(t *testing.T) {
	got := ParseMapping("I cannot classify these names.")
	if len(got) != 0 {
		t.Errorf("ParseMapping() = %v, want empty mapping", got)
	}
}
