package featureflags

import "testing"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("a", "u1") || !m.Enabled("c", "u1") || !m.Enabled("e", "u1") {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", "u1") || m.Enabled("d", "u1") || m.Enabled("f", "u1") {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
	if m.Enabled("unknown", "u1") {
		t.Fatal("unknown flags are off")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")

	if !m.Enabled("always", "") {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", "u1") {
		t.Fatal("0% rollout should always be disabled")
	}

	first := m.Enabled("canary", "0191c1de-7a2b-7c44-9d7e-1f0b2a3c4d5e")
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", "0191c1de-7a2b-7c44-9d7e-1f0b2a3c4d5e"); got != first {
			t.Fatal("rollout evaluation must be deterministic per user")
		}
	}

	if m.Enabled("canary", "") {
		t.Fatal("percentage rollout requires a user")
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,video_uploads=on, realtime_feed = 20% ,z=off ")

	raw := m.Raw()
	if len(raw) != 3 {
		t.Fatalf("expected 3 parsed flags, got %d", len(raw))
	}
	if raw[VideoUploads] != "on" || raw[RealtimeFeed] != "20%" || raw["z"] != "off" {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}

	snap := m.Snapshot("u123")
	if len(snap) != 3 {
		t.Fatalf("expected snapshot size 3, got %d", len(snap))
	}
	if !snap[VideoUploads] {
		t.Fatal("video_uploads should be on")
	}
}

func TestNilManager(t *testing.T) {
	var m *Manager
	if m.Enabled(VideoUploads, "u1") {
		t.Fatal("nil manager enables nothing")
	}
}
