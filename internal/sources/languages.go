package sources

import "strings"

// languageTable maps an ISO 639-2 code to a catalog specific code.
// Codes without an entry are passed through unchanged.
type languageTable map[string]string

func (t languageTable) lookup(code string) string {
	if v, ok := t[strings.ToLower(code)]; ok {
		return v
	}
	return code
}

var podnapisiLanguages = languageTable{
	"fre": "8",
	"eng": "2",
	"ger": "5",
	"spa": "28",
	"chi": "17",
}

var feliratokLanguages = languageTable{
	"hun": "Magyar",
	"eng": "Angol",
	"fre": "Francia",
	"ger": "Német",
	"spa": "Spanyol",
	"ita": "Olasz",
	"por": "Portugál",
	"dut": "Holland",
	"rus": "Orosz",
	"pol": "Lengyel",
	"cze": "Cseh",
	"slo": "Szlovák",
	"rum": "Román",
	"swe": "Svéd",
	"dan": "Dán",
	"nor": "Norvég",
	"fin": "Finn",
	"gre": "Görög",
	"tur": "Török",
	"jpn": "Japán",
	"chi": "Kínai",
	"kor": "Koreai",
	"ara": "Arab",
	"heb": "Héber",
	"hrv": "Horvát",
	"srp": "Szerb",
	"slv": "Szlovén",
	"bul": "Bolgár",
	"ukr": "Ukrán",
}

// iso6391 maps ISO 639-2 codes, bibliographic and terminologic, to the
// two-letter codes used by language detection.
var iso6391 = map[string]string{
	"fre": "fr", "fra": "fr",
	"eng": "en",
	"ger": "de", "deu": "de",
	"spa": "es",
	"ita": "it",
	"por": "pt",
	"dut": "nl", "nld": "nl",
	"hun": "hu",
	"rus": "ru",
	"pol": "pl",
	"cze": "cs", "ces": "cs",
	"slo": "sk", "slk": "sk",
	"rum": "ro", "ron": "ro",
	"swe": "sv",
	"dan": "da",
	"nor": "no", "nob": "nb",
	"fin": "fi",
	"gre": "el", "ell": "el",
	"tur": "tr",
	"jpn": "ja",
	"chi": "zh", "zho": "zh",
	"kor": "ko",
	"ara": "ar",
	"heb": "he",
	"hrv": "hr",
	"srp": "sr",
	"slv": "sl",
	"bul": "bg",
	"ukr": "uk",
}

// ISO6391 returns the two-letter code for an ISO 639-2 language code, or ""
// when it is unknown. Two-letter input is returned lower-cased.
func ISO6391(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) == 2 {
		return code
	}
	return iso6391[code]
}
