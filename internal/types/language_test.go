package types

import "testing"

func TestLanguageName(t *testing.T) {
	tests := []struct {
		lang Language
		want string
	}{
		{LangMarathi, "Marathi"},
		{LangHindi, "Hindi"},
		{LangEnglish, "English"},
		{Language("fr"), "English"},
		{Language(""), "English"},
	}

	for _, tt := range tests {
		if got := tt.lang.Name(); got != tt.want {
			t.Errorf("Language(%q).Name() = %q, want %q", tt.lang, got, tt.want)
		}
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"mr", true},
		{"hi", true},
		{"en", true},
		{"EN", false},
		{"", false},
	}

	for _, tt := range tests {
		_, ok := ParseLanguage(tt.input)
		if ok != tt.valid {
			t.Errorf("ParseLanguage(%q) valid = %v, want %v", tt.input, ok, tt.valid)
		}
	}
}

func TestParseAspectRatio(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"1:1", true},
		{"3:4", true},
		{"4:3", true},
		{"9:16", true},
		{"16:9", true},
		{"2:1", false},
		{"", false},
	}

	for _, tt := range tests {
		_, ok := ParseAspectRatio(tt.input)
		if ok != tt.valid {
			t.Errorf("ParseAspectRatio(%q) valid = %v, want %v", tt.input, ok, tt.valid)
		}
	}
}

func TestRequestContextFreeText(t *testing.T) {
	rc := RequestContext{Location: "Pune", Query: "Onion"}
	got := rc.FreeText()
	if len(got) != 2 || got[0] != "Pune" || got[1] != "Onion" {
		t.Errorf("FreeText() = %v, want [Pune Onion]", got)
	}

	empty := RequestContext{}
	if got := empty.FreeText(); len(got) != 0 {
		t.Errorf("FreeText() on empty context = %v, want none", got)
	}
}
