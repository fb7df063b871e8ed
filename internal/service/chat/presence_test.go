package chat

import "testing"

func TestPresenceRefcount(t *testing.T) {
	p := NewPresenceTracker()

	if !p.Connect("U1") {
		t.Error("first connect should report online flip")
	}
	if p.Connect("U1") {
		t.Error("second connect should not flip")
	}
	if !p.IsOnline("U1") {
		t.Error("user should be online")
	}
	if got := p.OnlineCount(); got != 1 {
		t.Errorf("OnlineCount = %d, want 1", got)
	}

	if p.Disconnect("U1") {
		t.Error("first disconnect should not flip with one conn left")
	}
	if !p.Disconnect("U1") {
		t.Error("last disconnect should flip offline")
	}
	if p.IsOnline("U1") {
		t.Error("user should be offline")
	}
}

func TestPresenceDisconnectUnknownUser(t *testing.T) {
	p := NewPresenceTracker()
	if p.Disconnect("Ughost") {
		t.Error("disconnect of unknown user reported a flip")
	}
}
