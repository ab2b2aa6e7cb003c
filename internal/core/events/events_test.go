package events

import "testing"

func TestGameModeValid(t *testing.T) {
	for _, m := range []GameMode{ModeLoading, ModeWaiting, ModeNormal, ModeGecko} {
		if !m.Valid() {
			t.Fatalf("mode %q should be valid", m)
		}
	}
	for _, m := range []GameMode{"", "turbo", "Loading"} {
		if m.Valid() {
			t.Fatalf("mode %q should be invalid", m)
		}
	}
}
