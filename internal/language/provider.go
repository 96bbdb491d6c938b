package language

import "strings"

// ProviderKind identifies one of the supported translation backends.
type ProviderKind string

const (
	// ScrapedWeb is the unofficial Bing web translator endpoint.
	ScrapedWeb ProviderKind = "bing"
	// FreeEndpoint is the public Google translate_a/single endpoint.
	FreeEndpoint ProviderKind = "google"
	// ChatCompletion is an OpenAI-compatible chat completions server.
	ChatCompletion ProviderKind = "openai"
)

// AutoDetect is the canonical source code that asks the provider to detect the language.
const AutoDetect = "auto"

const scrapedAutoDetect = "auto-detect"

var providerKindAliases = map[string]ProviderKind{
	"bing":             ScrapedWeb,
	"bingweb":          ScrapedWeb,
	"scraped":          ScrapedWeb,
	"google":           FreeEndpoint,
	"googlefree":       FreeEndpoint,
	"free":             FreeEndpoint,
	"openai":           ChatCompletion,
	"openaicompatible": ChatCompletion,
	"chat":             ChatCompletion,
	"local":            ChatCompletion,
}

// ParseProviderKind resolves a provider name, accepting the legacy setting values
// ("googleFree", "openaiCompatible") as well as the short names.
func ParseProviderKind(raw string) (ProviderKind, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	kind, ok := providerKindAliases[key]
	return kind, ok
}

// ProviderKinds lists every supported provider in a stable order.
func ProviderKinds() []ProviderKind {
	return []ProviderKind{ScrapedWeb, FreeEndpoint, ChatCompletion}
}

func (k ProviderKind) String() string {
	return string(k)
}

// ToProviderCode maps a canonical language code onto the dialect a provider expects.
// Unknown codes pass through unchanged.
func ToProviderCode(code string, kind ProviderKind) string {
	if kind != ScrapedWeb {
		return code
	}
	switch code {
	case AutoDetect:
		return scrapedAutoDetect
	case "zh-CN":
		return "zh-Hans"
	case "zh-TW":
		return "zh-Hant"
	default:
		return code
	}
}

// FromProviderCode maps a provider-reported code back to its canonical form.
func FromProviderCode(code string, kind ProviderKind) string {
	if kind != ScrapedWeb {
		return code
	}
	switch code {
	case scrapedAutoDetect:
		return AutoDetect
	case "zh-Hans":
		return "zh-CN"
	case "zh-Hant":
		return "zh-TW"
	default:
		return code
	}
}
