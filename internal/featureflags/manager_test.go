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
	if m.Enabled("missing", "u1") {
		t.Fatal("unknown flags are off")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,junk=abc%")

	if !m.On("always") {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", "u1") || m.Enabled("junk", "u1") {
		t.Fatal("0% and malformed rollouts should be disabled")
	}

	first := m.Enabled("canary", "k3x9a")
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", "k3x9a"); got != first {
			t.Fatal("rollout evaluation must be deterministic per user")
		}
	}

	if m.On("canary") {
		t.Fatal("partial rollout is off for the anonymous user")
	}
}

func TestDefaultsAndOverrides(t *testing.T) {
	if !NewManager("").On(LoginMetrics) {
		t.Fatal("login metrics default to on")
	}
	if NewManager("login_metrics=off").On(LoginMetrics) {
		t.Fatal("explicit value must override the default")
	}
	if NewManager("").On(StrictGuards) {
		t.Fatal("strict guards default to off")
	}
	if !NewManager("STRICT_GUARDS = ON").On(StrictGuards) {
		t.Fatal("names and values are case-insensitive")
	}

	var nilManager *Manager
	if nilManager.On(StrictGuards) {
		t.Fatal("nil manager reports every flag off")
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ")

	raw := m.Raw()
	if len(raw) != 4 {
		t.Fatalf("expected 3 parsed flags plus the default, got %d", len(raw))
	}
	if raw["x"] != "on" || raw["y"] != "20%" || raw["z"] != "off" {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}

	snap := m.Snapshot("u123")
	if len(snap) != 4 {
		t.Fatalf("expected snapshot size 4, got %d", len(snap))
	}
}
