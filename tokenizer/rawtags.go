package tokenizer

// Introducer and terminator patterns, stored lower case for folded suffix
// matching against the trailing window.
var (
	commentOpen  = []byte("<!--")
	cdataOpen    = []byte("<![cdata[")
	commentClose = []byte("-->")
	cdataClose   = []byte("]]>")
)

// rawTags maps a lower-cased element name to the pattern that ends its
// raw-text body. Only these elements suppress tag interpretation; the
// matched terminator is reopened as a closing tag of its own.
var rawTags = map[string][]byte{
	"script": []byte("</script"),
	"style":  []byte("</style"),
	"title":  []byte("</title"),
}

func isTagWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

func isNameByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '-' || b == '!' || b == '[' || b == ']':
		return true
	}
	return false
}

// tagName extracts the lower-cased element name from a raw tag payload: the
// leading '<' is skipped and bytes are accepted up to the first one outside
// the name alphabet. An empty name is fine, it just matches no raw tag.
func tagName(payload []byte) string {
	end := 1
	for end < len(payload) && isNameByte(payload[end]) {
		end++
	}
	name := make([]byte, end-1)
	for i, b := range payload[1:end] {
		if b >= 'A' && b <= 'Z' {
			b += 0x20
		}
		name[i] = b
	}
	return string(name)
}
