package session

import (
	"encoding/json"
	"fmt"
	"regexp"
)

var (
	igPattern          = regexp.MustCompile(`IG:"([^"]+)"`)
	iidPattern         = regexp.MustCompile(`data-iid="([^"]+)"`)
	abuseParamsPattern = regexp.MustCompile(`params_AbusePreventionHelper\s*=\s*(\[[^\]]*\])`)
)

// abuseParams is the decoded [key, "token", expiryMs] script array.
type abuseParams struct {
	Key      float64
	Token    string
	ExpiryMs float64
}

func parseConfig(html string) (*providerSession, error) {
	ig, err := extractIG(html)
	if err != nil {
		return nil, err
	}
	params, err := extractAbuseParams(html)
	if err != nil {
		return nil, err
	}

	return &providerSession{
		ig:    ig,
		iid:   extractIID(html),
		key:   params.Key,
		token: params.Token,
		// The provider uses the key as the token's issue timestamp.
		tokenIssuedAtMs:  params.Key,
		expiryIntervalMs: params.ExpiryMs,
	}, nil
}

func extractIG(html string) (string, error) {
	match := igPattern.FindStringSubmatch(html)
	if len(match) != 2 {
		return "", fmt.Errorf("%w: IG not found", ErrConfigParse)
	}
	return match[1], nil
}

func extractIID(html string) string {
	match := iidPattern.FindStringSubmatch(html)
	if len(match) != 2 {
		return DefaultIID
	}
	return match[1]
}

func extractAbuseParams(html string) (abuseParams, error) {
	match := abuseParamsPattern.FindStringSubmatch(html)
	if len(match) != 2 {
		return abuseParams{}, fmt.Errorf("%w: params_AbusePreventionHelper not found", ErrConfigParse)
	}

	var values []any
	if err := json.Unmarshal([]byte(match[1]), &values); err != nil {
		return abuseParams{}, fmt.Errorf("%w: decode params_AbusePreventionHelper: %w", ErrConfigParse, err)
	}
	if len(values) < 3 {
		return abuseParams{}, fmt.Errorf("%w: params_AbusePreventionHelper has %d elements", ErrConfigParse, len(values))
	}

	key, keyOK := values[0].(float64)
	token, tokenOK := values[1].(string)
	expiry, expiryOK := values[2].(float64)
	if !keyOK || !tokenOK || !expiryOK || token == "" {
		return abuseParams{}, fmt.Errorf("%w: params_AbusePreventionHelper has unexpected element types", ErrConfigParse)
	}

	return abuseParams{Key: key, Token: token, ExpiryMs: expiry}, nil
}
