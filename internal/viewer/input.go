// Package viewer turns terminal input into camera motion and display
// settings for the interactive renderer.
package viewer

import (
	"strings"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/lumen/pkg/render"
)

// holdTimeout is how long a key counts as held after its last press or
// repeat. Many terminals never report releases.
const holdTimeout = 150 * time.Millisecond

// movementKeys are tracked while held.
var movementKeys = []string{"w", "a", "s", "d", "q", "e", "space", "up", "down", "left", "right"}

// channelKeys select the displayed G-buffer channel.
var channelKeys = map[string]render.Channel{
	"c": render.ChannelColor,
	"f": render.ChannelDepth,
	"n": render.ChannelNormal,
	"b": render.ChannelBitangent,
	"t": render.ChannelTangent,
	"p": render.ChannelPosition,
}

// InputState collects input between two updates. Update consumes the
// one-shot parts (deltas, requests) and keeps held keys.
type InputState struct {
	held  map[string]time.Time
	boost bool

	DragX, DragY float64 // mouse drag since the last update, in cells
	Scroll       float64 // wheel steps, positive is up

	Channel     render.Channel
	ChannelSet  bool
	ToggleOrbit bool
	Reset       bool
	Quit        bool

	dragging     bool
	lastX, lastY int
}

// NewInputState returns an empty input state.
func NewInputState() *InputState {
	return &InputState{held: make(map[string]time.Time)}
}

// Press marks key as held at now.
func (in *InputState) Press(key string, now time.Time) {
	in.held[key] = now
}

// Release clears key.
func (in *InputState) Release(key string) {
	delete(in.held, key)
}

// Held reports whether key was pressed within holdTimeout of now.
func (in *InputState) Held(key string, now time.Time) bool {
	at, ok := in.held[key]
	if !ok {
		return false
	}
	if now.Sub(at) > holdTimeout {
		delete(in.held, key)
		return false
	}
	return true
}

// Boost reports whether the last movement key came with ctrl.
func (in *InputState) Boost() bool {
	return in.boost
}

// consume clears the one-shot fields after an update.
func (in *InputState) consume() {
	in.DragX, in.DragY = 0, 0
	in.Scroll = 0
	in.ChannelSet = false
	in.ToggleOrbit = false
	in.Reset = false
}

// HandleEvent folds a terminal event into the state.
func (in *InputState) HandleEvent(ev uv.Event, now time.Time) {
	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
			in.Quit = true
			return
		case ev.MatchString("o"):
			in.ToggleOrbit = true
			return
		case ev.MatchString("r"):
			in.Reset = true
			return
		}
		for key, ch := range channelKeys {
			if ev.MatchString(key) {
				in.Channel, in.ChannelSet = ch, true
				return
			}
		}
		for _, key := range movementKeys {
			if ev.MatchString(key) {
				in.Press(key, now)
				in.boost = false
				return
			}
			if ev.MatchString("ctrl+" + key) {
				in.Press(key, now)
				in.boost = true
				return
			}
		}

	case uv.KeyReleaseEvent:
		for _, key := range movementKeys {
			if ev.MatchString(key) || ev.MatchString("ctrl+"+key) {
				in.Release(key)
			}
		}

	case uv.MouseClickEvent:
		in.dragging = true
		in.lastX, in.lastY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		in.dragging = false

	case uv.MouseMotionEvent:
		if in.dragging {
			in.DragX += float64(ev.X - in.lastX)
			in.DragY += float64(ev.Y - in.lastY)
			in.lastX, in.lastY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			in.Scroll++
		case uv.MouseWheelDown:
			in.Scroll--
		}
	}
}

// Help returns the key bindings, one per line.
func Help() string {
	lines := []string{
		"W/A/S/D     move (fly) or orbit (orbit mode)",
		"Space/E, Q  up, down; hold ctrl for speed",
		"Mouse drag  look around",
		"Scroll      change field of view",
		"O           toggle orbit mode",
		"R           reset camera",
		"C F N B T P color, depth, normal, bitangent, tangent, position",
		"Esc         quit",
	}
	return strings.Join(lines, "\n")
}
