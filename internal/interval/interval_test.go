package interval

import (
	"testing"
	"time"
)

func date(t *testing.T, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestNormalize_SwapsReversedEndpoints(t *testing.T) {
	a := date(t, 2025, 3, 10, 12, 0)
	b := date(t, 2025, 3, 10, 10, 0)

	start, end := Normalize(a, b)
	if !start.Equal(b) || !end.Equal(a) {
		t.Errorf("expected swapped endpoints, got start=%v end=%v", start, end)
	}

	start, end = Normalize(b, a)
	if !start.Equal(b) || !end.Equal(a) {
		t.Errorf("ordered endpoints should pass through, got start=%v end=%v", start, end)
	}
}

func TestClamp(t *testing.T) {
	winStart := date(t, 2025, 3, 10, 0, 0)
	winEnd := date(t, 2025, 3, 11, 0, 0)

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		ok        bool
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "fully inside",
			start:     date(t, 2025, 3, 10, 9, 0),
			end:       date(t, 2025, 3, 10, 10, 0),
			ok:        true,
			wantStart: date(t, 2025, 3, 10, 9, 0),
			wantEnd:   date(t, 2025, 3, 10, 10, 0),
		},
		{
			name:      "overlaps start",
			start:     date(t, 2025, 3, 9, 23, 0),
			end:       date(t, 2025, 3, 10, 1, 0),
			ok:        true,
			wantStart: winStart,
			wantEnd:   date(t, 2025, 3, 10, 1, 0),
		},
		{
			name:      "overlaps end",
			start:     date(t, 2025, 3, 10, 23, 0),
			end:       date(t, 2025, 3, 11, 2, 0),
			ok:        true,
			wantStart: date(t, 2025, 3, 10, 23, 0),
			wantEnd:   winEnd,
		},
		{
			name:  "entirely before",
			start: date(t, 2025, 3, 9, 1, 0),
			end:   date(t, 2025, 3, 9, 2, 0),
			ok:    false,
		},
		{
			name:  "entirely after",
			start: date(t, 2025, 3, 12, 1, 0),
			end:   date(t, 2025, 3, 12, 2, 0),
			ok:    false,
		},
		{
			name:  "zero length",
			start: date(t, 2025, 3, 10, 9, 0),
			end:   date(t, 2025, 3, 10, 9, 0),
			ok:    false,
		},
		{
			name:      "reversed input normalized first",
			start:     date(t, 2025, 3, 10, 10, 0),
			end:       date(t, 2025, 3, 10, 9, 0),
			ok:        true,
			wantStart: date(t, 2025, 3, 10, 9, 0),
			wantEnd:   date(t, 2025, 3, 10, 10, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := Clamp(tt.start, tt.end, winStart, winEnd)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("got [%v, %v), want [%v, %v)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestSplitByDay_MidnightCrossing(t *testing.T) {
	// 23:30 to 00:10 the next day: 30 minutes then 10 minutes
	start := date(t, 2025, 3, 10, 23, 30)
	end := date(t, 2025, 3, 11, 0, 10)

	segs := SplitByDay(start, end, time.UTC)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %v", len(segs), segs)
	}
	if segs[0].Day != "2025-03-10" || segs[0].Seconds != 30*60 {
		t.Errorf("first segment = %+v, want 2025-03-10 / 1800s", segs[0])
	}
	if segs[1].Day != "2025-03-11" || segs[1].Seconds != 10*60 {
		t.Errorf("second segment = %+v, want 2025-03-11 / 600s", segs[1])
	}
}

func TestSplitByDay_MultipleMidnights(t *testing.T) {
	start := date(t, 2025, 3, 10, 22, 0)
	end := date(t, 2025, 3, 13, 2, 0)

	segs := SplitByDay(start, end, time.UTC)
	if len(segs) != 4 {
		t.Fatalf("expected 4 segments, got %d: %v", len(segs), segs)
	}

	var total int64
	seen := make(map[string]bool)
	for _, seg := range segs {
		if seen[seg.Day] {
			t.Errorf("day %s emitted twice", seg.Day)
		}
		seen[seg.Day] = true
		total += seg.Seconds
	}

	want := int64(end.Sub(start) / time.Second)
	if total != want {
		t.Errorf("segment seconds sum to %d, want %d", total, want)
	}
}

func TestSplitByDay_SingleDay(t *testing.T) {
	start := date(t, 2025, 3, 10, 9, 0)
	end := date(t, 2025, 3, 10, 9, 45)

	segs := SplitByDay(start, end, time.UTC)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].Day != "2025-03-10" || segs[0].Seconds != 45*60 {
		t.Errorf("segment = %+v", segs[0])
	}
}

func TestSplitByDay_EmptyInterval(t *testing.T) {
	at := date(t, 2025, 3, 10, 9, 0)
	if segs := SplitByDay(at, at, time.UTC); segs != nil {
		t.Errorf("expected nil for empty interval, got %v", segs)
	}
}

func TestSplitByDay_ReversedInterval(t *testing.T) {
	start := date(t, 2025, 3, 11, 0, 10)
	end := date(t, 2025, 3, 10, 23, 30)

	segs := SplitByDay(start, end, time.UTC)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments after normalization, got %d", len(segs))
	}
	if segs[0].Seconds != 1800 || segs[1].Seconds != 600 {
		t.Errorf("segments = %v", segs)
	}
}
