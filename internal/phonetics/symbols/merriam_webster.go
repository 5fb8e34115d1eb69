package symbols

// MerriamWebster maps Merriam-Webster pronunciation respellings to IPA.
//
// Voiced and unvoiced "th" are not distinguished by the source notation, so
// "th" maps to the alternation [θ|ð]. The "'ə" entry appears twice; both
// carry the same value.
//
// Source: http://www.merriam-webster.com/pronsymbols.html
var MerriamWebster = []Entry{
	{" ", " "},
	{"'", "'"},
	{"'ə", "'ʌ"},
	{",", ","},
	{",ə", ",ʌ"},
	{"-", "."},
	{`\`, "/"},
	{"/", "/"},
	{"(", "("},
	{")", ")"},
	{"[", "["},
	{"]", "]"},
	{"a", "æ"},
	{"au\u0307", "aʊ"},
	{"ä", "ɑ"},
	{"b", "b"},
	{"ch", "tʃ"},
	{"d", "d"},
	{"e", "ɛ"},
	{"f", "f"},
	{"g", "g"},
	{"h", "h"},
	{"i", "ɪ"},
	{"j", "dʒ"},
	{"k", "k"},
	{"k\u0331", "x"},
	{"l", "l"},
	{"m", "m"},
	{"n", "n"},
	{"o\u0307", "ɔ"},
	{"o\u0307i", "ɔɪ"},
	{"p", "p"},
	{"r", "ɹ"},
	{"s", "s"},
	{"sh", "ʃ"},
	{"t", "t"},
	{"th", "[θ|ð]"},
	{"u\u0307", "ʊ"},
	{"ü", "u"},
	{"v", "v"},
	{"w", "w"},
	{"y", "j"},
	{"yu\u0307", "(j)ʊ"},
	{"yü", "(j)u"},
	{"z", "z"},
	{"zh", "ʒ"},
	{"ā", "eɪ"},
	{"ē", "i"},
	{"ī", "aɪ"},
	{"ŋ", "ŋ"},
	{"ō", "oʊ"},
	{"ə", "ə"},
	{"ər", "ɝ"},
	{"ˈ", "ˈ"},
	{"ˈə", "ˈʌ"},
	{"ˌ", "ˌ"},
	{"'ə", "'ʌ"},
}
