package seekable

// Byte order marks.
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF32LE = []byte{0xFF, 0xFE, 0x00, 0x00}
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
)

type bomVariant struct {
	bom []byte

	// narrowTo is the specific encoding the BOM disambiguates a generic
	// name to, or "" when the declared name already fixes the byte order.
	narrowTo string
}

// bomTable maps a normalized encoding name to its possible BOMs. The order
// matters for "utf32": its little-endian BOM starts with the UTF-16 one,
// but within a single name the longest candidate is listed first.
var bomTable = map[string][]bomVariant{
	"utf8":    {{bom: bomUTF8}},
	"utf16":   {{bom: bomUTF16LE, narrowTo: "utf16-le"}, {bom: bomUTF16BE, narrowTo: "utf16-be"}},
	"utf16le": {{bom: bomUTF16LE}},
	"utf16be": {{bom: bomUTF16BE}},
	"utf32":   {{bom: bomUTF32LE, narrowTo: "utf32-le"}, {bom: bomUTF32BE, narrowTo: "utf32-be"}},
	"utf32le": {{bom: bomUTF32LE}},
	"utf32be": {{bom: bomUTF32BE}},
}
