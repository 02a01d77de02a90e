package tokenizer

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// TokenType classifies an emitted token.
type TokenType uint

const (
	// TextToken is a run of bytes between tags.
	TextToken TokenType = iota
	// OpenTagToken is an opening tag, comment introducer or CDATA
	// introducer, delimiters included.
	OpenTagToken
	// CloseTagToken is a closing tag, comment terminator or CDATA
	// terminator, delimiters included.
	CloseTagToken
)

// String returns the wire name of the token type.
func (t TokenType) String() string {
	switch t {
	case TextToken:
		return "text"
	case OpenTagToken:
		return "open"
	case CloseTagToken:
		return "close"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// Token is one classified run of input bytes. Data holds the exact source
// bytes of the segment; for tags that includes the delimiters, so
// concatenating the Data of every emitted token reproduces the input.
type Token struct {
	Type TokenType
	Data []byte
}

// MarshalJSON encodes the token as the two-element ["kind","data"] pair.
func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{t.Type.String(), string(t.Data)})
}

// UnmarshalJSON decodes the two-element ["kind","data"] pair.
func (t *Token) UnmarshalJSON(b []byte) error {
	var pair [2]string
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	switch pair[0] {
	case "text":
		t.Type = TextToken
	case "open":
		t.Type = OpenTagToken
	case "close":
		t.Type = CloseTagToken
	default:
		return errors.Errorf("unknown token kind %q", pair[0])
	}
	t.Data = []byte(pair[1])
	return nil
}
