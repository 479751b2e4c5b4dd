package main

import "testing"

func TestParseInterval(t *testing.T) {
	const col = "Časový interval"

	tests := []struct {
		label string
		ok    bool
		start int
		end   int
		wraps bool
	}{
		{"20:30-20:45", true, 20*60 + 30, 20*60 + 45, false},
		{"09:00-09:15", true, 9 * 60, 9*60 + 15, false},
		{"9:30-9:45", true, 9*60 + 30, 9*60 + 45, false}, // leading zeros optional
		{"  20:30 - 20:45 ", true, 20*60 + 30, 20*60 + 45, false},
		{"23:45-00:00", true, 23*60 + 45, 0, true},
		{"23:00-01:00", true, 23 * 60, 60, true},

		{"", false, 0, 0, false},
		{"foo-bar", false, 0, 0, false},
		{"20:30", false, 0, 0, false},
		{"20:30-20:45-21:00", false, 0, 0, false},
		{"20:30-", false, 0, 0, false},
		{"-20:45", false, 0, 0, false},
		{"25:00-25:15", false, 0, 0, false},
		{"20:61-20:75", false, 0, 0, false},
		{"09:00-09:00", false, 0, 0, false}, // degenerate
		{"Časový interval", false, 0, 0, false},
		{"interval", false, 0, 0, false}, // header word re-emitted
	}

	for _, tc := range tests {
		p, ok := ParseInterval(0, tc.label, col)
		if ok != tc.ok {
			t.Errorf("ParseInterval(%q) ok = %v, want %v", tc.label, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		if p.Start != tc.start || p.End != tc.end || p.CrossesMidnight != tc.wraps {
			t.Errorf("ParseInterval(%q) = start %d end %d wraps %v, want %d %d %v",
				tc.label, p.Start, p.End, p.CrossesMidnight, tc.start, tc.end, tc.wraps)
		}
	}
}

func TestIntervalContains(t *testing.T) {
	tests := []struct {
		label  string
		nowMin int
		want   bool
	}{
		{"09:00-09:15", 9 * 60, true},       // start inclusive
		{"09:00-09:15", 9*60 + 14, true},
		{"09:00-09:15", 9*60 + 15, false},   // end exclusive
		{"09:00-09:15", 8*60 + 59, false},

		{"23:45-00:00", 23*60 + 50, true},
		{"23:45-00:00", 23*60 + 45, true},
		{"23:45-00:00", 0, false}, // end exclusive across midnight
		{"23:45-00:00", 12 * 60, false},

		{"23:00-01:00", 23*60 + 30, true},
		{"23:00-01:00", 30, true}, // 00:30, second day fragment
		{"23:00-01:00", 60, false},
		{"23:00-01:00", 12 * 60, false},
	}

	for _, tc := range tests {
		p, ok := ParseInterval(0, tc.label, "Interval")
		if !ok {
			t.Fatalf("ParseInterval(%q) unexpectedly failed", tc.label)
		}
		if got := p.Contains(tc.nowMin); got != tc.want {
			t.Errorf("%q.Contains(%d) = %v, want %v", tc.label, tc.nowMin, got, tc.want)
		}
	}
}
