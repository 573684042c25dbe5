package pipeline

import "testing"

func TestStitch_RemovesOverlapAtSeam(t *testing.T) {
	s := NewStitcher(10)
	got := s.Stitch([]string{
		"the customer asked about the renewal and the quick brown fox",
		"the quick brown fox jumped over the pricing objection",
	})
	want := "the customer asked about the renewal and the quick brown fox jumped over the pricing objection"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestStitch_CaseInsensitiveMatch(t *testing.T) {
	s := NewStitcher(10)
	got := s.Stitch([]string{
		"we agreed on the Next Steps",
		"next steps include a follow-up call",
	})
	want := "we agreed on the next steps include a follow-up call"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestStitch_NoOverlapJoinsVerbatim(t *testing.T) {
	s := NewStitcher(10)
	got := s.Stitch([]string{
		"first part of the call",
		"entirely different second part",
	})
	want := "first part of the call entirely different second part"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestStitch_SingleWordMatchIgnored(t *testing.T) {
	s := NewStitcher(10)
	// "the" alone is coincidence, not overlap; nothing may be dropped.
	got := s.Stitch([]string{
		"he reviewed the",
		"the proposal in detail",
	})
	want := "he reviewed the the proposal in detail"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestStitch_ThreeSegments(t *testing.T) {
	s := NewStitcher(10)
	got := s.Stitch([]string{
		"alpha bravo charlie delta echo",
		"delta echo foxtrot golf hotel",
		"golf hotel india juliett",
	})
	want := "alpha bravo charlie delta echo foxtrot golf hotel india juliett"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestStitch_Trivial(t *testing.T) {
	s := NewStitcher(10)
	if got := s.Stitch(nil); got != "" {
		t.Errorf("Stitch(nil) = %q", got)
	}
	if got := s.Stitch([]string{"  only segment  "}); got != "only segment" {
		t.Errorf("single segment = %q", got)
	}
	if got := s.Stitch([]string{"some words", ""}); got != "some words" {
		t.Errorf("empty second segment = %q", got)
	}
	if got := s.Stitch([]string{"", "late words"}); got != "late words" {
		t.Errorf("empty first segment = %q", got)
	}
}

func TestStitch_MatchBeyondWindowIgnored(t *testing.T) {
	// Window of 4 words: an overlap further back than that is out of reach
	// and the texts join verbatim.
	s := &Stitcher{windowWords: 4, minMatchWords: 2}
	got := s.Stitch([]string{
		"one two three four five six seven eight",
		"one two nine ten",
	})
	want := "one two three four five six seven eight one two nine ten"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestLongestSeamMatch(t *testing.T) {
	cases := []struct {
		name       string
		tail, head []string
		wantOffset int
		wantRun    int
	}{
		{
			name: "full suffix prefix match",
			tail: []string{"a", "b", "c"}, head: []string{"b", "c", "d"},
			wantOffset: 1, wantRun: 2,
		},
		{
			name: "interior repeat is not a seam",
			tail: []string{"x", "y", "z"}, head: []string{"x", "y", "q"},
			wantOffset: 0, wantRun: 0,
		},
		{
			name: "no match",
			tail: []string{"a", "b"}, head: []string{"c", "d"},
			wantOffset: 0, wantRun: 0,
		},
		{
			name: "head shorter than tail run",
			tail: []string{"a", "b", "c"}, head: []string{"c"},
			wantOffset: 2, wantRun: 1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offset, run := longestSeamMatch(tc.tail, tc.head)
			if offset != tc.wantOffset || run != tc.wantRun {
				t.Errorf("got (%d, %d), want (%d, %d)", offset, run, tc.wantOffset, tc.wantRun)
			}
		})
	}
}
