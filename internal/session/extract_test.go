package session

import (
	"errors"
	"testing"
)

func TestExtractIG(t *testing.T) {
	t.Parallel()

	got, err := extractIG(`_G={Region:"US",IG:"A1B2C3",EventID:"e"}`)
	if err != nil || got != "A1B2C3" {
		t.Fatalf("unexpected IG: %q err=%v", got, err)
	}
	if _, err := extractIG(`_G={Region:"US"}`); !errors.Is(err, ErrConfigParse) {
		t.Fatalf("expected ErrConfigParse, got %v", err)
	}
}

func TestExtractIID_FallsBack(t *testing.T) {
	t.Parallel()

	if got := extractIID(`<div data-iid="translator.5023">`); got != "translator.5023" {
		t.Fatalf("unexpected IID: %q", got)
	}
	if got := extractIID(`<div>`); got != DefaultIID {
		t.Fatalf("expected fallback IID, got %q", got)
	}
}

func TestExtractAbuseParams(t *testing.T) {
	t.Parallel()

	params, err := extractAbuseParams(`var params_AbusePreventionHelper=[1712345678901,"abc-token",3600000];`)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if params.Key != 1712345678901 || params.Token != "abc-token" || params.ExpiryMs != 3600000 {
		t.Fatalf("unexpected params: %+v", params)
	}

	invalid := []string{
		`nothing here`,
		`params_AbusePreventionHelper = [1712345678901,"abc"]`,
		`params_AbusePreventionHelper = ["1712345678901","abc",3600000]`,
		`params_AbusePreventionHelper = [1712345678901,abc,3600000]`,
		`params_AbusePreventionHelper = [1712345678901,"",3600000]`,
	}
	for _, html := range invalid {
		if _, err := extractAbuseParams(html); !errors.Is(err, ErrConfigParse) {
			t.Fatalf("expected ErrConfigParse for %q, got %v", html, err)
		}
	}
}

func TestParseConfig_UsesKeyAsIssueTime(t *testing.T) {
	t.Parallel()

	sess, err := parseConfig(translatorPage("IGX"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sess.tokenIssuedAtMs != sess.key || sess.key != testKeyMs {
		t.Fatalf("expected issue time to equal key, got %+v", sess)
	}
	if sess.requestCounter != 0 {
		t.Fatalf("fresh session must start at counter 0, got %d", sess.requestCounter)
	}
}
