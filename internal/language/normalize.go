package language

import "strings"

// chineseScripts maps lowercase Chinese tags onto the two canonical variants.
var chineseScripts = map[string]string{
	"zh":      "zh-CN",
	"zh-cn":   "zh-CN",
	"zh-sg":   "zh-CN",
	"zh-hans": "zh-CN",
	"zh-chs":  "zh-CN",
	"zh-tw":   "zh-TW",
	"zh-hk":   "zh-TW",
	"zh-mo":   "zh-TW",
	"zh-hant": "zh-TW",
	"zh-cht":  "zh-TW",
}

// NormalizeTag lowercases a language tag and joins its subtags with "-".
// Blank or non-alphabetic tags normalize to "".
func NormalizeTag(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	parts := strings.FieldsFunc(trimmed, func(r rune) bool { return r == '-' || r == '_' })
	for _, part := range parts {
		if !isAlphaLower(part) {
			return ""
		}
	}
	return strings.Join(parts, "-")
}

// NormalizeCode returns the primary language subtag ("en" for "en-US").
func NormalizeCode(raw string) string {
	tag := NormalizeTag(raw)
	if primary, _, found := strings.Cut(tag, "-"); found {
		return primary
	}
	return tag
}

// Canonical maps user or provider input ("EN_us", "zh-Hant", "AUTO") onto the
// codes used throughout the gateway. Chinese script and region tags fold onto
// zh-CN or zh-TW; every other tag keeps its subtags in conventional casing
// ("pt-PT", "sr-Latn", "zh-yue").
func Canonical(raw string) string {
	tag := NormalizeTag(raw)
	switch {
	case tag == "":
		return ""
	case tag == AutoDetect || tag == scrapedAutoDetect:
		return AutoDetect
	}
	if variant, ok := chineseScripts[tag]; ok {
		return variant
	}
	switch {
	case strings.HasPrefix(tag, "zh-hans-"):
		return "zh-CN"
	case strings.HasPrefix(tag, "zh-hant-"):
		return "zh-TW"
	}

	parts := strings.Split(tag, "-")
	for i := 1; i < len(parts); i++ {
		switch len(parts[i]) {
		case 2:
			parts[i] = strings.ToUpper(parts[i])
		case 4:
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "-")
}

func isAlphaLower(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
