package tokenizer

// windowSize is the length of the longest pattern the scanner recognizes by
// suffix, "<![CDATA[".
const windowSize = 9

// trailingWindow records the most recently consumed input bytes. It is a
// fixed ring written once per byte and never reset, so multi-byte patterns
// are matched across chunk boundaries without rescanning.
type trailingWindow struct {
	buf [windowSize]byte
	pos int // next write position
	n   int // bytes recorded, capped at windowSize
}

func (w *trailingWindow) push(b byte) {
	w.buf[w.pos] = b
	w.pos = (w.pos + 1) % windowSize
	if w.n < windowSize {
		w.n++
	}
}

// endsWithFold reports whether the last len(pat) bytes consumed equal pat
// under ASCII case folding. pat must be lower case and no longer than
// windowSize. The comparison walks backward from the logical end so a
// mismatch bails out early.
func (w *trailingWindow) endsWithFold(pat []byte) bool {
	k := len(pat)
	if k > w.n {
		return false
	}
	for i := 1; i <= k; i++ {
		b := w.buf[(w.pos-i+windowSize)%windowSize]
		p := pat[k-i]
		if p >= 'a' && p <= 'z' {
			b |= 0x20
		}
		if b != p {
			return false
		}
	}
	return true
}

// last copies out the most recent k bytes in input order, original casing
// preserved.
func (w *trailingWindow) last(k int) []byte {
	if k > w.n {
		k = w.n
	}
	out := make([]byte, k)
	for i := 0; i < k; i++ {
		out[i] = w.buf[(w.pos-k+i+windowSize)%windowSize]
	}
	return out
}
