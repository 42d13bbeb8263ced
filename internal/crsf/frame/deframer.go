package frame

// Stats are cumulative deframer diagnostics. None of these conditions is
// fatal; they exist so callers can surface link health.
type Stats struct {
	FramesYielded   uint64
	BytesDiscarded  uint64
	BadLengths      uint64
	CRCErrors       uint64
	BufferOverflows uint64
}

// Deframer locates frame boundaries in an untrusted byte stream. Bytes are
// pushed in by the caller; Next yields validated frames one at a time.
// A Deframer holds state for exactly one link and is not safe for
// concurrent use.
type Deframer struct {
	sync    byte
	max     int
	buf     []byte
	pending []Frame
	stats   Stats
}

// NewDeframer returns a deframer scanning for the given sync byte with a
// working buffer capped at maxBuffer bytes. maxBuffer values below
// MaxFrameSize are raised to it so a complete frame always fits.
func NewDeframer(sync byte, maxBuffer int) *Deframer {
	if maxBuffer < MaxFrameSize {
		maxBuffer = MaxFrameSize
	}
	return &Deframer{
		sync: sync,
		max:  maxBuffer,
		buf:  make([]byte, 0, maxBuffer),
	}
}

// Push appends newly arrived bytes to the working buffer. Input larger
// than the buffer cap is absorbed in buffer-sized slices, with complete
// frames extracted to a pending queue between slices, so one oversized
// Push decodes exactly the same frames as byte-at-a-time delivery. Only a
// full buffer that still holds no usable frame boundary drops its oldest
// bytes; resynchronization recovers from the truncation.
func (d *Deframer) Push(p []byte) {
	for len(p) > 0 {
		room := d.max - len(d.buf)
		if room <= 0 {
			d.drain()
			room = d.max - len(d.buf)
		}
		if room <= 0 {
			// The scanner always reduces a full buffer when the cap is at
			// least MaxFrameSize; this guards a misconfigured cap.
			drop := d.max / 2
			d.stats.BufferOverflows++
			d.stats.BytesDiscarded += uint64(drop)
			d.consume(drop)
			room = d.max - len(d.buf)
		}
		n := room
		if n > len(p) {
			n = len(p)
		}
		d.buf = append(d.buf, p[:n]...)
		p = p[n:]
	}
}

// Next returns the next complete, checksum-valid frame: first any frame
// extracted during Push, then whatever the buffer scan finds. It returns
// ok=false when no complete frame is held; a partially arrived frame is
// left in place for a later Push to finish. The returned payload is a copy
// and remains valid after further calls.
func (d *Deframer) Next() (Frame, bool) {
	if len(d.pending) > 0 {
		f := d.pending[0]
		d.pending = d.pending[1:]
		return f, true
	}
	return d.scan()
}

func (d *Deframer) drain() {
	for {
		f, ok := d.scan()
		if !ok {
			return
		}
		d.pending = append(d.pending, f)
	}
}

func (d *Deframer) scan() (Frame, bool) {
	for {
		d.discardToSync()

		// Sync found; need the length byte plus the length's worth of
		// body before a candidate frame exists.
		if len(d.buf) < 2 {
			return Frame{}, false
		}
		length := int(d.buf[1])
		if length < MinLength || length > MaxLength {
			// The length is garbage, so this sync byte was not a frame
			// start. Drop it and rescan from the next byte.
			d.stats.BadLengths++
			d.stats.BytesDiscarded++
			d.consume(1)
			continue
		}
		if len(d.buf) < length+2 {
			return Frame{}, false
		}

		body := d.buf[2 : length+2]
		if err := Validate(body); err != nil {
			// Only the sync byte is dropped, not the whole candidate
			// window: a noise byte that happens to equal the sync value
			// must not swallow the start of a genuine frame behind it.
			d.stats.CRCErrors++
			d.stats.BytesDiscarded++
			d.consume(1)
			continue
		}

		payload := make([]byte, length-2)
		copy(payload, body[1:length-1])
		f := Frame{Type: body[0], Payload: payload}
		d.consume(length + 2)
		d.stats.FramesYielded++
		return f, true
	}
}

// Stats returns a snapshot of cumulative diagnostics.
func (d *Deframer) Stats() Stats {
	return d.stats
}

// Buffered reports how many raw bytes are currently held. Frames already
// extracted to the pending queue are not counted.
func (d *Deframer) Buffered() int {
	return len(d.buf)
}

// Reset drops all buffered bytes and pending frames. Diagnostics are
// preserved.
func (d *Deframer) Reset() {
	d.buf = d.buf[:0]
	d.pending = nil
}

func (d *Deframer) discardToSync() {
	i := 0
	for i < len(d.buf) && d.buf[i] != d.sync {
		i++
	}
	if i > 0 {
		d.stats.BytesDiscarded += uint64(i)
		d.consume(i)
	}
}

func (d *Deframer) consume(n int) {
	d.buf = append(d.buf[:0], d.buf[n:]...)
}
