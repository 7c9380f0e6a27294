package listener

import "testing"

// TestShouldContinueBurst asserts the rate rule verbatim: continue iff
// events*1000 > 10*elapsed_ms, for elapsed_ms in (0, 30000] and events
// <= 2048.
func TestShouldContinueBurst(t *testing.T) {
	cases := []struct {
		name    string
		events  int
		elapsed int64
		want    bool
	}{
		{"above threshold", 20, 1000, true},                 // 20000 > 10000
		{"at threshold", 10, 1000, false},                    // 10000 > 10000 is false
		{"just above threshold", 11, 1000, true},             // 11000 > 10000
		{"below threshold", 5, 1000, false},                  // 5000 > 10000 false
		{"tiny elapsed high rate", 1, 1, true},               // 1000 > 10
		{"max window max count", 2048, 30000, true}, // 2048000 > 300000
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ShouldContinueBurst(tc.events, tc.elapsed)
			if got != tc.want {
				t.Fatalf("ShouldContinueBurst(%d, %d) = %v, want %v", tc.events, tc.elapsed, got, tc.want)
			}
		})
	}
}
