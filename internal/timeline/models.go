package timeline

// Channel identifies a camera channel on the appliance (e.g. "ch1").
type Channel string

// ClipReference is the opaque locator returned by the archive for a
// materialized clip. The navigator never interprets it beyond building a
// playable URL.
type ClipReference string

// ClipDurationMs is the fixed length of every clip the archive serves.
// Continuation advances the session end time by exactly this much.
const ClipDurationMs int64 = 60_000

// MillisPerHour converts between the hour-based timeline axis and epoch
// millisecond timestamps.
const MillisPerHour float64 = 3_600_000

// Segment is a half-open recorded interval [StartTimeMs, EndTimeMs) for one
// channel. The archive does not guarantee sorted or non-overlapping segments;
// consumers clip each one to the visible window independently.
type Segment struct {
	StartTimeMs int64 `json:"start_time"`
	EndTimeMs   int64 `json:"end_time"`
}

// Valid reports whether the segment is a well-formed non-empty interval.
func (s Segment) Valid() bool {
	return s.StartTimeMs < s.EndTimeMs
}

// PlaybackSession is the live playback state owned exclusively by the
// PlaybackController. It exists from a successful seek until an explicit
// stop, a channel switch, or a date switch.
type PlaybackSession struct {
	CurrentStartTimeMs int64
	CurrentEndTimeMs   int64
	PlayingReference   ClipReference
}

// PlaybackState names the controller's state machine states.
type PlaybackState string

const (
	StateIdle       PlaybackState = "idle"
	StateRequesting PlaybackState = "requesting"
	StatePlaying    PlaybackState = "playing"
	StateStopped    PlaybackState = "stopped"
)
