package aspect

import (
	"math"
	"testing"
	"testing/quick"

	"media-stage/internal/mediatypes"
)

func TestResolvePrecedence(t *testing.T) {
	tests := []struct {
		name       string
		att        mediatypes.Attachment
		snapshot   *Snapshot
		want       Ratio
		wantSource Source
	}{
		{
			name:       "snapshot wins over declared size",
			att:        mediatypes.Attachment{ID: "a1", Width: 1600, Height: 900},
			snapshot:   &Snapshot{AttachmentID: "a1", Ratio: 1.0},
			want:       1.0,
			wantSource: SourceSnapshot,
		},
		{
			name:       "zero snapshot falls through to declared size",
			att:        mediatypes.Attachment{ID: "a1", Width: 1600, Height: 900},
			snapshot:   &Snapshot{AttachmentID: "a1", Ratio: 0},
			want:       Ratio(1600.0 / 900.0),
			wantSource: SourceDeclared,
		},
		{
			name:       "NaN snapshot falls through",
			att:        mediatypes.Attachment{ID: "a1", Width: 400, Height: 800},
			snapshot:   &Snapshot{AttachmentID: "a1", Ratio: Ratio(math.NaN())},
			want:       0.5,
			wantSource: SourceDeclared,
		},
		{
			name:       "declared size wins over URL",
			att:        mediatypes.Attachment{ID: "a1", Width: 100, Height: 100, URL: "https://cdn/x_1920x1080.jpg"},
			want:       1.0,
			wantSource: SourceDeclared,
		},
		{
			name:       "half declared size falls through to URL",
			att:        mediatypes.Attachment{ID: "a1", Width: 100, URL: "https://cdn/x_1920x1080.jpg"},
			want:       Ratio(1920.0 / 1080.0),
			wantSource: SourceURL,
		},
		{
			name:       "preview URL used when full URL has no hints",
			att:        mediatypes.Attachment{ID: "a1", URL: "https://cdn/orig.jpg", PreviewURL: "https://cdn/small.jpg?w=300&h=600"},
			want:       0.5,
			wantSource: SourceURL,
		},
		{
			name:       "nothing usable yields default",
			att:        mediatypes.Attachment{ID: "a1", URL: "https://cdn/orig.jpg"},
			want:       DefaultRatio,
			wantSource: SourceDefault,
		},
		{
			name:       "negative declared size yields default",
			att:        mediatypes.Attachment{ID: "a1", Width: -5, Height: 10},
			want:       DefaultRatio,
			wantSource: SourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveWithSource(tt.att, tt.snapshot)
			if got.Ratio != tt.want {
				t.Errorf("Ratio = %v, want %v", got.Ratio, tt.want)
			}
			if got.Source != tt.wantSource {
				t.Errorf("Source = %v, want %v", got.Source, tt.wantSource)
			}
		})
	}
}

func TestResolveIsDeterministicAndPositive(t *testing.T) {
	f := func(id string, w, h int16, snap float64, useSnap bool) bool {
		att := mediatypes.Attachment{ID: id, Width: int(w), Height: int(h), URL: "https://cdn/" + id}
		var s *Snapshot
		if useSnap {
			s = &Snapshot{AttachmentID: id, Ratio: Ratio(snap)}
		}
		first := Resolve(att, s)
		second := Resolve(att, s)
		return first == second && first.Valid()
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

type mapSource map[string]Snapshot

func (m mapSource) Snapshot(id string) (Snapshot, bool) {
	s, ok := m[id]
	return s, ok
}

type countingObserver struct {
	counts map[Source]int
}

func (o *countingObserver) ObserveResolution(source Source) {
	o.counts[source]++
}

func TestResolverResolveAll(t *testing.T) {
	obs := &countingObserver{counts: map[Source]int{}}
	r := NewResolver(mapSource{"a2": {AttachmentID: "a2", Ratio: 2}}, obs)

	atts := []mediatypes.Attachment{
		{ID: "a1", Width: 16, Height: 9},
		{ID: "a2", Width: 16, Height: 9},
		{ID: "a3"},
		{ID: "a1", Width: 1, Height: 1},
	}
	ratios := r.ResolveAll(atts)

	if len(ratios) != 3 {
		t.Fatalf("expected 3 ratios, got %d", len(ratios))
	}
	if ratios["a1"] != Ratio(16.0/9.0) {
		t.Errorf("a1 = %v, want first occurrence to win", ratios["a1"])
	}
	if ratios["a2"] != 2 {
		t.Errorf("a2 = %v, want snapshot ratio 2", ratios["a2"])
	}
	if ratios["a3"] != DefaultRatio {
		t.Errorf("a3 = %v, want default", ratios["a3"])
	}
	if obs.counts[SourceDeclared] != 1 || obs.counts[SourceSnapshot] != 1 || obs.counts[SourceDefault] != 1 {
		t.Errorf("unexpected observer counts: %v", obs.counts)
	}
}

func TestResolverNilSource(t *testing.T) {
	r := NewResolver(nil, nil)
	ratios := r.ResolveAll([]mediatypes.Attachment{{ID: "x"}})
	if ratios["x"] != DefaultRatio {
		t.Errorf("got %v, want default", ratios["x"])
	}
}
