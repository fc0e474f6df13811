package language

import (
	"fmt"
	"strings"

	xlang "golang.org/x/text/language"
)

type entry struct {
	code2   string // ISO 639-1 (2-letter)
	code3   string // ISO 639-2 primary (3-letter)
	alt3    string // ISO 639-2 alternate (e.g. "fre" vs "fra")
	tess    string // Tesseract traineddata name
	display string
	word    string // full English name, lowercase
}

var languages = []entry{
	{"en", "eng", "", "eng", "English", "english"},
	{"es", "spa", "", "spa", "Spanish", "spanish"},
	{"fr", "fra", "fre", "fra", "French", "french"},
	{"de", "deu", "ger", "deu", "German", "german"},
	{"it", "ita", "", "ita", "Italian", "italian"},
	{"pt", "por", "", "por", "Portuguese", "portuguese"},
	{"ja", "jpn", "", "jpn", "Japanese", "japanese"},
	{"ko", "kor", "", "kor", "Korean", "korean"},
	{"zh", "zho", "chi", "chi_sim", "Chinese", "chinese"},
	{"ru", "rus", "", "rus", "Russian", "russian"},
	{"ar", "ara", "", "ara", "Arabic", "arabic"},
	{"hi", "hin", "", "hin", "Hindi", "hindi"},
	{"nl", "nld", "dut", "nld", "Dutch", "dutch"},
	{"pl", "pol", "", "pol", "Polish", "polish"},
	{"sv", "swe", "", "swe", "Swedish", "swedish"},
	{"da", "dan", "", "dan", "Danish", "danish"},
	{"no", "nor", "", "nor", "Norwegian", "norwegian"},
	{"fi", "fin", "", "fin", "Finnish", "finnish"},
	{"cs", "ces", "cze", "ces", "Czech", "czech"},
	{"el", "ell", "gre", "ell", "Greek", "greek"},
	{"tr", "tur", "", "tur", "Turkish", "turkish"},
	{"uk", "ukr", "", "ukr", "Ukrainian", "ukrainian"},
}

var byKey map[string]*entry

func init() {
	byKey = make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		byKey[e.code2] = e
		byKey[e.code3] = e
		if e.alt3 != "" {
			byKey[e.alt3] = e
		}
		byKey[e.tess] = e
		byKey[e.word] = e
	}
}

// TesseractCode resolves a language tag to a Tesseract traineddata code.
func TesseractCode(tag string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(tag))
	if key == "" {
		return "", fmt.Errorf("empty language tag")
	}
	if e, ok := byKey[key]; ok {
		return e.tess, nil
	}

	// Fall back to BCP 47 parsing so region-qualified tags resolve.
	parsed, err := xlang.Parse(key)
	if err != nil {
		return "", fmt.Errorf("unknown language %q", tag)
	}
	base, _ := parsed.Base()
	if e, ok := byKey[base.String()]; ok {
		return e.tess, nil
	}
	return "", fmt.Errorf("unsupported language %q", tag)
}

// TesseractCodes resolves a list of tags, preserving order and removing
// duplicates.
func TesseractCodes(tags []string) ([]string, error) {
	seen := make(map[string]struct{}, len(tags))
	codes := make([]string, 0, len(tags))
	for _, tag := range tags {
		code, err := TesseractCode(tag)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no languages specified")
	}
	return codes, nil
}

// Display returns the human-readable name for a tag, or the tag itself when
// it cannot be resolved.
func Display(tag string) string {
	key := strings.ToLower(strings.TrimSpace(tag))
	if e, ok := byKey[key]; ok {
		return e.display
	}
	return tag
}
