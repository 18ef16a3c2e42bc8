// Package sound plays client-side sound effects for lobby events.
package sound

import "github.com/palemoky/card-smash/internal/protocol"

// Effect names a sound effect. The sound directory holds one file per
// effect, named after it (smash.wav, win.mp3, ...).
type Effect string

const (
	EffectCardPlayed Effect = "card"
	EffectSmash      Effect = "smash"
	EffectAwarded    Effect = "award"
	EffectReshuffle  Effect = "shuffle"
	EffectWin        Effect = "win"
)

// DefaultDir is where sound files are looked up when no directory is given.
const DefaultDir = "assets/sounds"

var eventEffects = map[protocol.EventType]Effect{
	protocol.EventCardPlayed:   EffectCardPlayed,
	protocol.EventCardsAwarded: EffectAwarded,
	protocol.EventReshuffle:    EffectReshuffle,
	protocol.EventPlayerWin:    EffectWin,
}

// EffectFor returns the effect played when a server event arrives.
func EffectFor(t protocol.EventType) (Effect, bool) {
	e, ok := eventEffects[t]
	return e, ok
}
