package uevent

import "testing"

func TestEnvSetGet(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"simple", "ACTION", "add"},
		{"empty value", "DM_UUID", ""},
		{"long key", "ID_SERIAL_SHORT", "3600a098000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := NewEnv()
			if !env.Set(tc.key, tc.val) {
				t.Fatalf("Set(%q, %q) returned false", tc.key, tc.val)
			}
			got, ok := env.Get(tc.key)
			if !ok || got != tc.val {
				t.Fatalf("Get(%q) = %q, %v; want %q, true", tc.key, got, ok, tc.val)
			}
		})
	}
}

func TestEnvGetMissing(t *testing.T) {
	env := NewEnv()
	env.Set("ACTION", "add")
	if _, ok := env.Get("DEVPATH"); ok {
		t.Fatalf("expected miss for absent key")
	}
}

func TestEnvOverflowEntryCount(t *testing.T) {
	env := NewEnv()
	const cap = HotplugNumEnvp - 1 // last slot reserved for a NULL terminator
	for i := 0; i < cap; i++ {
		if !env.Set(shortKey(i), "v") {
			t.Fatalf("Set unexpectedly failed at entry %d", i)
		}
	}
	if env.Set("ONE_MORE", "v") {
		t.Fatalf("expected overflow once entry count reaches %d", cap)
	}
	if env.Len() != cap {
		t.Fatalf("Len() = %d, want %d", env.Len(), cap)
	}
}

func TestEnvOverflowBufferSize(t *testing.T) {
	env := NewEnv()
	big := make([]byte, HotplugBufferSize)
	for i := range big {
		big[i] = 'x'
	}
	if env.Set("HUGE", string(big)) {
		t.Fatalf("expected overflow when a single value exceeds the buffer budget")
	}
}

func shortKey(i int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	return "K" + string(letters[i%len(letters)]) + string(rune('0'+i%10))
}
