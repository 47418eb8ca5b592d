package compaction

import "testing"

func TestSegmentStatsEffectiveLen(t *testing.T) {
	s := SegmentStats{Len: 10, Garbage: 3}
	if got := s.EffectiveLen(); got != 7 {
		t.Fatalf("EffectiveLen() = %d, want 7", got)
	}
}

func TestSegmentStatsGarbageRateEmptySegment(t *testing.T) {
	s := SegmentStats{}
	if got := s.GarbageRate(); got != 0 {
		t.Fatalf("GarbageRate() on empty segment = %v, want 0", got)
	}
}

func TestPolicyShouldCompact(t *testing.T) {
	policy := NewPolicy(0.618)

	tests := []struct {
		name  string
		stats SegmentStats
		want  bool
	}{
		{"empty segment never qualifies", SegmentStats{}, false},
		{"below threshold", SegmentStats{Len: 10, Garbage: 6}, false},
		{"above threshold", SegmentStats{Len: 10, Garbage: 7}, true},
		{"exactly at threshold does not qualify", SegmentStats{Len: 1000, Garbage: 618}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.ShouldCompact(tt.stats); got != tt.want {
				t.Fatalf("ShouldCompact(%+v) = %v, want %v", tt.stats, got, tt.want)
			}
		})
	}
}
