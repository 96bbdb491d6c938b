package language

import "testing"

func TestNormalizeTag(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		" EN_us ": "en-us",
		"zh-Hans": "zh-hans",
		"en--US":  "en-us",
		"en_123":  "",
		"   ":     "",
	}
	for in, want := range cases {
		if got := NormalizeTag(in); got != want {
			t.Fatalf("NormalizeTag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	if got := NormalizeCode(" EN-us "); got != "en" {
		t.Fatalf("unexpected normalized code: %q", got)
	}
	if got := NormalizeCode("zh"); got != "zh" {
		t.Fatalf("unexpected normalized code: %q", got)
	}
	if got := NormalizeCode(" "); got != "" {
		t.Fatalf("expected empty code for blank input, got %q", got)
	}
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"AUTO":         "auto",
		"auto-detect":  "auto",
		"en_US":        "en-US",
		"fr":           "fr",
		"zh":           "zh-CN",
		"zh-Hans":      "zh-CN",
		"ZH_tw":        "zh-TW",
		"zh-HK":        "zh-TW",
		"zh-Hant-TW":   "zh-TW",
		"zh-Hans-SG":   "zh-CN",
		"pt-BR":        "pt-BR",
		"pt-pt":        "pt-PT",
		"FR_ca":        "fr-CA",
		"sr-latn":      "sr-Latn",
		"zh-yue":       "zh-yue",
		"mni-Mtei":     "mni-Mtei",
		"not a lang 1": "",
		"":             "",
	}
	for in, want := range cases {
		if got := Canonical(in); got != want {
			t.Fatalf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}
