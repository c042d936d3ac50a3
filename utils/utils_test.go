package utils

import (
	"testing"
)

func TestShortMint(t *testing.T) {
	if got := ShortMint("So11111111111111111111111111111111111111112"); got != "So111111..." {
		t.Errorf("got %q", got)
	}
	if got := ShortMint("short"); got != "short" {
		t.Errorf("short input mangled: %q", got)
	}
}

func TestVenueName(t *testing.T) {
	cases := []struct {
		programID string
		want      string
		known     bool
	}{
		{RAYDIUM_AMM_PROGRAM, "Raydium", true},
		{RAYDIUM_CLMM_PROGRAM, "Raydium CLMM", true},
		{ORCA_SWAP_PROGRAM, "Orca", true},
		{ORCA_WHIRLPOOL_PROGRAM, "Orca Whirlpool", true},
	}
	for _, tc := range cases {
		name, ok := VenueName(tc.programID)
		if name != tc.want || ok != tc.known {
			t.Errorf("%s: got (%q, %v) want (%q, %v)", tc.programID, name, ok, tc.want, tc.known)
		}
	}

	name, ok := VenueName("UnknownProgram11111111111111111111111111111")
	if ok {
		t.Errorf("unknown program resolved to %q", name)
	}
	if name != "UnknownP..." {
		t.Errorf("unknown program label: %q", name)
	}
}

func TestSeenCacheEvictsOldest(t *testing.T) {
	c := &SeenCache{
		set:      make(map[string]struct{}),
		order:    make([]string, 0, 4),
		capacity: 2,
	}

	c.Add("a")
	c.Add("b")
	c.Add("a") // duplicate, no effect
	if c.Len() != 2 || !c.Has("a") || !c.Has("b") {
		t.Fatalf("cache state: len=%d", c.Len())
	}

	c.Add("c")
	if c.Has("a") {
		t.Errorf("oldest entry not evicted")
	}
	if !c.Has("b") || !c.Has("c") || c.Len() != 2 {
		t.Errorf("cache state after eviction: len=%d", c.Len())
	}
}
