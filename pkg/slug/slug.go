package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Latin letters that commonly show up in product and store names.
var folder = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
	"ç", "c", "è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i", "ı", "i",
	"ñ", "n", "ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o", "ø", "o",
	"ş", "s", "ß", "ss", "ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ğ", "g", "ý", "y", "ÿ", "y",
)

// Generate creates a URL-friendly slug from the given name.
//
//   - "Classic Crew-Neck Tee" -> "classic-crew-neck-tee"
//   - "Café Crème" -> "cafe-creme"
func Generate(name string) string {
	s := folder.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Path joins already-slugged segments into an absolute storefront path,
// e.g. Path("product", "tee", "tee-red") -> "/product/tee/tee-red".
func Path(segments ...string) string {
	return "/" + strings.Join(segments, "/")
}
