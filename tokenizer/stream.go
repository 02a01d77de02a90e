package tokenizer

import (
	"io"

	"github.com/pkg/errors"
)

const defaultChunkSize = 4096

// StreamConfig configures a StreamTokenizer.
type StreamConfig struct {
	Config
	// ChunkSize is the read size per pull from the underlying reader.
	// Zero means the default of 4096 bytes.
	ChunkSize int
}

// StreamTokenizer drives a Tokenizer from an io.Reader, turning the
// chunk-push contract of Process/Finalize into a pull loop.
type StreamTokenizer struct {
	z     *Tokenizer
	r     io.Reader
	size  int
	queue []Token
	done  bool
	err   error
}

// NewStreamTokenizer returns a stream tokenizer with default configuration.
func NewStreamTokenizer(r io.Reader) *StreamTokenizer {
	return NewStreamTokenizerConfig(r, StreamConfig{})
}

// NewStreamTokenizerConfig returns a stream tokenizer with the given
// configuration.
func NewStreamTokenizerConfig(r io.Reader, cfg StreamConfig) *StreamTokenizer {
	size := cfg.ChunkSize
	if size <= 0 {
		size = defaultChunkSize
	}
	return &StreamTokenizer{
		z:    NewTokenizerConfig(cfg.Config),
		r:    r,
		size: size,
	}
}

// Next returns the next token, reading more input on demand. It returns
// io.EOF once the stream and its final flush are exhausted; any other error
// came from the underlying reader and is sticky. Tokens completed before a
// read failure are still delivered, but nothing partial is flushed for it.
func (s *StreamTokenizer) Next() (Token, error) {
	for len(s.queue) == 0 {
		if s.err != nil {
			return Token{}, s.err
		}
		if s.done {
			return Token{}, io.EOF
		}
		// Fresh buffer per read: the tokenizer keeps views into chunks
		// until their token is flushed.
		chunk := make([]byte, s.size)
		n, err := s.r.Read(chunk)
		if n > 0 {
			s.queue = s.z.Process(chunk[:n])
		}
		switch {
		case err == io.EOF:
			s.done = true
			s.queue = append(s.queue, s.z.Finalize()...)
		case err != nil:
			s.err = errors.Wrap(err, "tagstream: read chunk")
		}
	}
	t := s.queue[0]
	s.queue = s.queue[1:]
	return t, nil
}

// Tokenize reads r to completion and returns every token in input order.
func Tokenize(r io.Reader) ([]Token, error) {
	s := NewStreamTokenizer(r)
	var tokens []Token
	for {
		t, err := s.Next()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, t)
	}
}
