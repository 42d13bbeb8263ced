package crsf

import (
	"time"

	"github.com/elrstools/crsflink/internal/crsf/frame"
	"github.com/elrstools/crsflink/internal/link"
)

// Config configures one Decoder. The zero value selects protocol defaults.
type Config struct {
	// SyncByte overrides the frame sync byte. Zero selects frame.Sync.
	SyncByte byte
	// MaxBuffer caps the deframer working buffer in bytes.
	MaxBuffer int
	// LinkTimeout is the freshness window for the link tracker.
	LinkTimeout time.Duration
	// DecodeTypes, when non-empty, restricts typed decoding to the listed
	// frame types; everything else passes through as Unknown.
	DecodeTypes []FrameType
	// Now supplies the monotonic clock. Defaults to time.Now.
	Now func() time.Time
}

// Event is one decoder output. The set is closed: FrameEvent for each
// validated frame and StateEvent for each link state transition.
type Event interface {
	event()
}

// FrameEvent carries one decoded record, in frame arrival order.
type FrameEvent struct {
	Record Record
}

func (FrameEvent) event() {}

// StateEvent reports a link state transition.
type StateEvent struct {
	From link.State
	To   link.State
	At   time.Time
}

func (StateEvent) event() {}

// Decoder is the per-link decode context: deframer, payload codec and link
// tracker behind a single re-entrant push interface. It performs no I/O
// and never blocks; feed it bytes from any read loop. One Decoder serves
// exactly one link and is not safe for concurrent use.
type Decoder struct {
	sync     byte
	deframer *frame.Deframer
	tracker  *link.Tracker
	filter   map[FrameType]bool
	now      func() time.Time
}

// NewDecoder returns a decoder in the Searching state with an empty buffer.
func NewDecoder(cfg Config) *Decoder {
	sync := cfg.SyncByte
	if sync == 0 {
		sync = frame.Sync
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	var filter map[FrameType]bool
	if len(cfg.DecodeTypes) > 0 {
		filter = make(map[FrameType]bool, len(cfg.DecodeTypes))
		for _, t := range cfg.DecodeTypes {
			filter[t] = true
		}
	}
	return &Decoder{
		sync:     sync,
		deframer: frame.NewDeframer(sync, cfg.MaxBuffer),
		tracker:  link.NewTracker(cfg.LinkTimeout),
		filter:   filter,
		now:      now,
	}
}

// Push feeds newly arrived bytes in and returns the resulting events in
// FIFO order. An empty slice is the normal "need more data" outcome. The
// timeout check runs before the new bytes are processed, so a frame
// arriving after a long silence reports the loss before the reconnect
// even when no Poll happened in between.
func (d *Decoder) Push(p []byte) []Event {
	events := d.checkTimeout()
	d.deframer.Push(p)

	for {
		f, ok := d.deframer.Next()
		if !ok {
			break
		}
		now := d.now()
		for _, tr := range d.tracker.Observe(now) {
			events = append(events, StateEvent{From: tr.From, To: tr.To, At: tr.At})
		}
		events = append(events, FrameEvent{Record: d.decode(f)})
	}
	return events
}

// Poll runs only the link timeout check. Call it periodically during
// silence so Lost transitions surface promptly.
func (d *Decoder) Poll() []Event {
	return d.checkTimeout()
}

// State returns the current link classification.
func (d *Decoder) State() link.State {
	return d.tracker.State()
}

// Stats returns the deframer diagnostics snapshot.
func (d *Decoder) Stats() frame.Stats {
	return d.deframer.Stats()
}

// Marshal builds the wire form of a record using this decoder's sync byte,
// ready for transmission on the same link.
func (d *Decoder) Marshal(rec Record) ([]byte, error) {
	return Marshal(d.sync, rec)
}

func (d *Decoder) decode(f frame.Frame) Record {
	typ := FrameType(f.Type)
	if d.filter != nil && !d.filter[typ] {
		return Unknown{FrameType: typ, Data: f.Payload}
	}
	rec, err := Decode(typ, f.Payload)
	if err != nil {
		// A checksum-valid frame whose payload does not fit the known
		// layout is forwarded raw instead of breaking the pipeline.
		return Unknown{FrameType: typ, Data: f.Payload}
	}
	return rec
}

func (d *Decoder) checkTimeout() []Event {
	var events []Event
	for _, tr := range d.tracker.Check(d.now()) {
		events = append(events, StateEvent{From: tr.From, To: tr.To, At: tr.At})
	}
	return events
}
