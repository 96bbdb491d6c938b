package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// minLetters keeps very short inputs from producing confident nonsense.
const minLetters = 6

// Detector adapts the shared lingua detector to the chat provider's prompt builder.
type Detector struct{}

// Detect returns a canonical language code for text, or "" when unsure.
func (Detector) Detect(text string) string {
	code := DetectISO6391(text)
	if code == "zh" {
		return chineseVariant(text)
	}
	return code
}

func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < minLetters {
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

// chineseVariant guesses between the simplified and traditional scripts by
// counting characters that only exist in one of them.
func chineseVariant(text string) string {
	simplified, traditional := 0, 0
	for _, r := range text {
		switch {
		case strings.ContainsRune(simplifiedOnly, r):
			simplified++
		case strings.ContainsRune(traditionalOnly, r):
			traditional++
		}
	}
	if traditional > simplified {
		return "zh-TW"
	}
	return "zh-CN"
}

const (
	simplifiedOnly  = "这个们来时为说国会对发学经后动过里还没问实现头样东开关门长马书见话语车"
	traditionalOnly = "這個們來時為說國會對發學經後動過裡還沒問實現頭樣東開關門長馬書見話語車"
)

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithPreloadedLanguageModels().
			Build()
	})
	return detector
}
