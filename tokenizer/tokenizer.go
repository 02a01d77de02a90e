// Package tokenizer converts an ordered stream of raw markup bytes into
// text, opening-tag and closing-tag tokens without building a tree or
// validating structure. Input arrives as chunks of arbitrary size; the
// token sequence is identical however the stream is split, including one
// byte at a time. Bytes are never decoded: entities pass through literally
// and no charset conversion happens.
//
// The scanner holds zero-copy views into chunk buffers until a token
// boundary, so Process may retain sub-slices of its argument until the
// token containing them is flushed. Callers that recycle chunk buffers
// must hand in copies; StreamTokenizer already does.
package tokenizer

import (
	"github.com/sirupsen/logrus"
)

type scanMode uint

const (
	textMode scanMode = iota
	tagOpenMode
)

type tagState uint

const (
	tagNameState tagState = iota
	attributeNameState
	beforeAttributeValueState
	attributeValueState
)

type quoteState uint

const (
	noQuote quoteState = iota
	doubleQuote
	singleQuote
)

// Config carries construction options for a Tokenizer.
type Config struct {
	// SuppressText drops Text tokens entirely: they are neither emitted nor
	// buffered, in normal scanning and inside raw-text bodies alike, so
	// structure-only consumers pay no allocation for content they ignore.
	// Open and Close tokens are unaffected.
	SuppressText bool
}

// Tokenizer is the cursor for one input stream. One instance owns all of
// its state; it is not safe for concurrent use and is meant to be driven
// one chunk at a time from a single goroutine.
type Tokenizer struct {
	mode     scanMode
	tagState tagState
	quote    quoteState

	rawTerminator []byte // awaited closing pattern, nil outside raw mode
	rawLen        int    // bytes consumed inside the current raw section

	pending pendingSegments
	window  trailingWindow

	deferred    []byte // stashed buffer that ended on an ambiguous '<'
	deferredOff int    // start of the unflushed text run inside deferred

	closeFromRaw bool // current tag is a reopened raw terminator
	suppressText bool

	out []Token
}

// NewTokenizer returns a tokenizer with default configuration.
func NewTokenizer() *Tokenizer {
	return NewTokenizerConfig(Config{})
}

// NewTokenizerConfig returns a tokenizer with the given configuration.
func NewTokenizerConfig(cfg Config) *Tokenizer {
	return &Tokenizer{suppressText: cfg.SuppressText}
}

// Process scans one chunk and returns the tokens it completed, in input
// order. It never fails; every byte either becomes token payload or pending
// state. A call that ends on a '<' that cannot yet be classified returns
// whatever tokens were completed before it and resumes there on the next
// call.
func (z *Tokenizer) Process(chunk []byte) []Token {
	z.out = nil

	buf := chunk
	pos := 0
	start := 0
	if z.deferred != nil {
		// Prepend the stash so the deferred '<' finally gets its
		// lookahead byte.
		buf = make([]byte, 0, len(z.deferred)+len(chunk))
		buf = append(buf, z.deferred...)
		buf = append(buf, chunk...)
		pos = len(z.deferred) - 1
		start = z.deferredOff
		z.deferred = nil
		z.deferredOff = 0
	}

	for ; pos < len(buf); pos++ {
		b := buf[pos]
		switch {
		case z.rawTerminator != nil:
			z.window.push(b)
			start = z.scanRawByte(buf, start, pos)
		case z.mode == textMode:
			if b == '<' {
				if pos == len(buf)-1 {
					// A trailing '<' cannot be classified without the next
					// byte: stash the buffer and the unflushed offset. The
					// window deliberately does not record it yet; it is
					// consumed on resumption.
					z.deferred = buf
					z.deferredOff = start
					return z.out
				}
				if !isTagWhitespace(buf[pos+1]) {
					z.pushText(buf[start:pos])
					z.flushText()
					start = pos
					z.mode = tagOpenMode
					z.tagState = tagNameState
					z.quote = noQuote
					z.window.push(b)
					continue
				}
				// '<' before whitespace stays literal text.
			}
			z.window.push(b)
		default: // tagOpenMode
			z.window.push(b)
			start = z.scanTagByte(buf, start, pos)
		}
	}

	// Carry the unconsumed tail of the current segment forward by
	// reference; it is flushed by a later chunk or by Finalize.
	z.pushTail(buf[start:])
	return z.out
}

// Finalize signals end of stream. A pending text run is flushed as a final
// Text token; a partially scanned tag or raw-text section is discarded
// silently, truncation of malformed trailing input rather than an error.
// Afterwards the tokenizer accepts a fresh stream.
func (z *Tokenizer) Finalize() []Token {
	z.out = nil

	if z.deferred != nil {
		// The stashed '<' never got its lookahead byte; the whole stashed
		// tail is plain text.
		z.pushText(z.deferred[z.deferredOff:])
		z.deferred = nil
		z.deferredOff = 0
	}

	switch {
	case z.rawTerminator != nil:
		logrus.WithFields(logrus.Fields{
			"terminator": string(z.rawTerminator),
			"discarded":  z.pending.size,
		}).Debug("[TOKENIZER]: stream ended inside a raw text section")
		z.pending.reset()
		z.rawTerminator = nil
	case z.mode == tagOpenMode:
		logrus.WithField("discarded", z.pending.size).Debug("[TOKENIZER]: stream ended inside a tag")
		z.pending.reset()
		z.mode = textMode
	default:
		z.flushText()
	}

	z.tagState = tagNameState
	z.quote = noQuote
	z.closeFromRaw = false
	z.rawLen = 0
	return z.out
}

// scanTagByte advances the tag sub-state machine by one byte, returning the
// new segment start offset. The offset only moves when the byte completed a
// token.
func (z *Tokenizer) scanTagByte(buf []byte, start, pos int) int {
	// A comment or CDATA introducer rewrites the meaning of the open tag
	// wherever it completes, independent of sub-state.
	if z.window.endsWithFold(commentOpen) {
		return z.openRawSection(buf, start, pos, commentClose)
	}
	if z.window.endsWithFold(cdataOpen) {
		return z.openRawSection(buf, start, pos, cdataClose)
	}

	b := buf[pos]
	if z.quote == noQuote && b == '>' {
		return z.closeTag(buf, start, pos)
	}

	switch z.tagState {
	case tagNameState:
		if isTagWhitespace(b) {
			z.tagState = attributeNameState
		}
	case attributeNameState:
		if b == '=' {
			z.tagState = beforeAttributeValueState
		}
	case beforeAttributeValueState:
		if isTagWhitespace(b) {
			break
		}
		z.tagState = attributeValueState
		switch b {
		case '"':
			z.quote = doubleQuote
		case '\'':
			z.quote = singleQuote
		default:
			// The byte itself is the first content byte of an unquoted
			// value.
			z.quote = noQuote
		}
	case attributeValueState:
		switch z.quote {
		case noQuote:
			if isTagWhitespace(b) {
				z.tagState = attributeNameState
			}
		case doubleQuote:
			if b == '"' {
				z.tagState = attributeNameState
				z.quote = noQuote
			}
		case singleQuote:
			if b == '\'' {
				z.tagState = attributeNameState
				z.quote = noQuote
			}
		}
	}
	return start
}

// closeTag finishes the tag at its '>' byte, emits it and decides whether a
// raw-text section follows.
func (z *Tokenizer) closeTag(buf []byte, start, pos int) int {
	z.pending.push(buf[start : pos+1])
	payload := z.pending.take()
	z.mode = textMode
	z.tagState = tagNameState
	z.quote = noQuote

	switch {
	case z.closeFromRaw:
		// The reopened raw terminator closes as an end tag no matter how
		// it is spelled.
		z.closeFromRaw = false
		z.emit(Token{Type: CloseTagToken, Data: payload})
	case len(payload) > 1 && payload[1] == '/':
		z.emit(Token{Type: CloseTagToken, Data: payload})
	default:
		z.emit(Token{Type: OpenTagToken, Data: payload})
		if term, ok := rawTags[tagName(payload)]; ok {
			z.enterRaw(term)
		}
	}
	return pos + 1
}

// openRawSection handles a matched comment or CDATA introducer: the pending
// tag bytes through pos are emitted as an Open token and scanning switches
// to awaiting term.
func (z *Tokenizer) openRawSection(buf []byte, start, pos int, term []byte) int {
	z.pending.push(buf[start : pos+1])
	z.emit(Token{Type: OpenTagToken, Data: z.pending.take()})
	z.mode = textMode
	z.tagState = tagNameState
	z.quote = noQuote
	z.closeFromRaw = false
	z.enterRaw(term)
	return pos + 1
}

func (z *Tokenizer) enterRaw(term []byte) {
	z.rawTerminator = term
	z.rawLen = 0
	logrus.WithField("terminator", string(term)).Debug("[TOKENIZER]: entering raw text section")
}

// scanRawByte consumes one byte of a raw-text section. Tag structure is
// ignored until the trailing window matches the awaited terminator.
func (z *Tokenizer) scanRawByte(buf []byte, start, pos int) int {
	z.rawLen++
	term := z.rawTerminator
	// The terminator may not borrow bytes from its own introducer, so a
	// match needs at least len(term) bytes of raw content.
	if z.rawLen < len(term) || !z.window.endsWithFold(term) {
		return start
	}

	z.rawTerminator = nil
	logrus.WithField("terminator", string(term)).Debug("[TOKENIZER]: leaving raw text section")

	// The window holds the matched bytes with their original casing; this
	// copy also spares the content concatenation when text is suppressed.
	matched := z.window.last(len(term))
	if z.suppressText {
		z.pending.reset()
	} else {
		z.pending.push(buf[start : pos+1])
		whole := z.pending.take()
		if content := whole[:len(whole)-len(term)]; len(content) > 0 {
			z.emit(Token{Type: TextToken, Data: content})
		}
	}

	if term[0] == '<' {
		// An element terminator such as "</script": reopen it as a tag of
		// its own so stray attributes and the closing '>' go through the
		// normal tag scan.
		z.pending.push(matched)
		z.mode = tagOpenMode
		z.tagState = tagNameState
		z.quote = noQuote
		z.closeFromRaw = true
	} else {
		z.emit(Token{Type: CloseTagToken, Data: matched})
	}
	return pos + 1
}

// pushText stages a text byte range for the pending token unless text is
// suppressed.
func (z *Tokenizer) pushText(ref []byte) {
	if z.suppressText {
		return
	}
	z.pending.push(ref)
}

// pushTail carries the unflushed end of the current chunk into the pending
// list. Suppressed text is dropped here already so its bytes are never
// retained past the scan that produced them.
func (z *Tokenizer) pushTail(tail []byte) {
	if len(tail) == 0 {
		return
	}
	if z.suppressText && z.mode == textMode {
		return
	}
	z.pending.push(tail)
}

// flushText closes out the pending text run, emitting it unless text is
// suppressed or the run is empty.
func (z *Tokenizer) flushText() {
	if z.suppressText {
		z.pending.reset()
		return
	}
	if payload := z.pending.take(); len(payload) > 0 {
		z.emit(Token{Type: TextToken, Data: payload})
	}
}

func (z *Tokenizer) emit(t Token) {
	z.out = append(z.out, t)
}
