package handlers

import (
	"clutchzone-api/internal/realtime"
)

// liveHub is the process-wide realtime hub, injected from main. Handlers
// that relay realtime events must tolerate a nil hub (tests, tooling).
var liveHub *realtime.Hub

// SetHub injects the realtime hub used for event relays.
func SetHub(h *realtime.Hub) {
	liveHub = h
}
