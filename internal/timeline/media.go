package timeline

import "sync"

// MediaPlayer is the single playback surface the controller drives. Only the
// PlaybackController writes to it; everything else observes playback through
// media events.
type MediaPlayer interface {
	// Load sets the player's source to the given clip and starts playback.
	Load(ref ClipReference)
	// Pause halts playback, keeping the current source and position.
	Pause()
	// Reset pauses and returns the play position to zero, clearing the source.
	Reset()
	// Current returns the source clip the player last loaded ("" when reset).
	Current() ClipReference
}

// MediaEventKind names the media element events the controller consumes.
type MediaEventKind string

const (
	// MediaTimeUpdate reports the element's current play position.
	MediaTimeUpdate MediaEventKind = "timeupdate"
	// MediaEnded reports natural end of the loaded clip.
	MediaEnded MediaEventKind = "ended"
)

// MediaEvent is one playback report from the media element. Source carries
// the clip the event belongs to so stale clips can be told apart from the
// active one.
type MediaEvent struct {
	Kind       MediaEventKind `json:"kind"`
	Source     ClipReference  `json:"source"`
	PositionMs int64          `json:"position_ms"`
}

// MediaDirective is the pending instruction for the browser's video element.
type MediaDirective struct {
	Action string        `json:"action"` // "load", "pause", "reset"
	Source ClipReference `json:"source,omitempty"`
	URL    string        `json:"url,omitempty"`
	Seq    uint64        `json:"seq"`
}

// MediaBridge implements MediaPlayer for the dashboard shell: the real video
// element lives in the browser, so the bridge records the latest directive,
// notifies watchers, and lets the browser report events back through the
// controller. Seq increases monotonically so clients can discard directives
// they have already executed.
type MediaBridge struct {
	mu       sync.Mutex
	current  ClipReference
	pending  MediaDirective
	seq      uint64
	clipURL  func(ClipReference) string
	onChange func()
}

// NewMediaBridge returns a bridge that builds playable URLs with clipURL and
// calls onChange (may be nil) after every directive.
func NewMediaBridge(clipURL func(ClipReference) string, onChange func()) *MediaBridge {
	return &MediaBridge{clipURL: clipURL, onChange: onChange}
}

// Load implements MediaPlayer.Load.
func (b *MediaBridge) Load(ref ClipReference) {
	b.mu.Lock()
	b.current = ref
	b.seq++
	b.pending = MediaDirective{Action: "load", Source: ref, URL: b.clipURL(ref), Seq: b.seq}
	b.mu.Unlock()
	b.notify()
}

// Pause implements MediaPlayer.Pause.
func (b *MediaBridge) Pause() {
	b.mu.Lock()
	b.seq++
	b.pending = MediaDirective{Action: "pause", Source: b.current, Seq: b.seq}
	b.mu.Unlock()
	b.notify()
}

// Reset implements MediaPlayer.Reset.
func (b *MediaBridge) Reset() {
	b.mu.Lock()
	b.current = ""
	b.seq++
	b.pending = MediaDirective{Action: "reset", Seq: b.seq}
	b.mu.Unlock()
	b.notify()
}

// Current implements MediaPlayer.Current.
func (b *MediaBridge) Current() ClipReference {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Directive returns the latest pending directive for the client.
func (b *MediaBridge) Directive() MediaDirective {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

func (b *MediaBridge) notify() {
	if b.onChange != nil {
		b.onChange()
	}
}
