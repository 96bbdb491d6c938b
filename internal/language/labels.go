package language

import "sort"

// Option describes one selectable language.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var labels = map[string]string{
	"ar":    "Arabic",
	"da":    "Danish",
	"de":    "German",
	"en":    "English",
	"es":    "Spanish",
	"fi":    "Finnish",
	"fr":    "French",
	"hi":    "Hindi",
	"id":    "Indonesian",
	"it":    "Italian",
	"ja":    "Japanese",
	"ko":    "Korean",
	"nl":    "Dutch",
	"no":    "Norwegian",
	"pl":    "Polish",
	"pt":    "Portuguese",
	"ru":    "Russian",
	"sv":    "Swedish",
	"th":    "Thai",
	"tr":    "Turkish",
	"uk":    "Ukrainian",
	"vi":    "Vietnamese",
	"zh-CN": "Simplified Chinese",
	"zh-TW": "Traditional Chinese",
}

// Label returns the English display name of a canonical code, or the code itself.
func Label(code string) string {
	if code == AutoDetect {
		return "any language"
	}
	if label, ok := labels[code]; ok {
		return label
	}
	if label, ok := labels[NormalizeCode(code)]; ok {
		return label
	}
	return code
}

// Supported reports whether code is one of the canonical target languages.
func Supported(code string) bool {
	_, ok := labels[code]
	return ok
}

// Options returns the canonical languages sorted by code.
func Options() []Option {
	codes := make([]string, 0, len(labels))
	for code := range labels {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	options := make([]Option, 0, len(codes))
	for _, code := range codes {
		options = append(options, Option{Code: code, Label: labels[code]})
	}
	return options
}
