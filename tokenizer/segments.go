package tokenizer

// pendingSegments accumulates zero-copy views into chunk buffers until a
// segment boundary forces one owned payload. Views are kept in input order;
// their concatenation is always a contiguous run of the original stream.
type pendingSegments struct {
	refs [][]byte
	size int
}

func (p *pendingSegments) push(ref []byte) {
	if len(ref) == 0 {
		return
	}
	p.refs = append(p.refs, ref)
	p.size += len(ref)
}

// take concatenates every accumulated view into a single owned payload and
// clears the list. This is the only point at which bytes are copied.
func (p *pendingSegments) take() []byte {
	if p.size == 0 {
		return nil
	}
	out := make([]byte, 0, p.size)
	for _, ref := range p.refs {
		out = append(out, ref...)
	}
	p.reset()
	return out
}

// reset drops every accumulated view without copying, releasing the chunk
// buffers they point into.
func (p *pendingSegments) reset() {
	for i := range p.refs {
		p.refs[i] = nil
	}
	p.refs = p.refs[:0]
	p.size = 0
}
