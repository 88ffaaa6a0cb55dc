package clustering

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/muesli/clusters"

	"github.com/justestif/moodmatch/internal/profile"
)

func cond(emotion string, above float64) profile.Condition {
	return profile.Condition{Emotion: emotion, Above: above}
}

func TestGroupArchetypes(t *testing.T) {
	neutral := profile.New("Neutral Balance", "", nil, nil, "balanced", nil)

	tests := []struct {
		name          string
		profiles      []profile.Profile
		cfg           GroupConfig
		wantGroups    int
		wantUngrouped int
	}{
		{
			name:          "empty input",
			profiles:      nil,
			cfg:           DefaultGroupConfig(),
			wantGroups:    0,
			wantUngrouped: 0,
		},
		{
			name:          "profile without conditions is ungrouped",
			profiles:      []profile.Profile{neutral},
			cfg:           DefaultGroupConfig(),
			wantGroups:    0,
			wantUngrouped: 1,
		},
		{
			name: "fewer profiles than groups",
			profiles: []profile.Profile{
				profile.New("Radiant Joy", "", nil, []profile.Condition{cond("happy", 70)}, "", nil),
				profile.New("Deep Melancholy", "", nil, []profile.Condition{cond("sad", 50)}, "", nil),
				neutral,
			},
			cfg:           DefaultGroupConfig(),
			wantGroups:    0,
			wantUngrouped: 3,
		},
		{
			name: "single group holds every conditioned profile",
			profiles: []profile.Profile{
				profile.New("Radiant Joy", "", nil, []profile.Condition{cond("happy", 70)}, "", nil),
				profile.New("Content Glow", "", nil, []profile.Condition{cond("happy", 40)}, "", nil),
				neutral,
			},
			cfg:           GroupConfig{NumGroups: 1, MinGroupSize: 1, MaxEmotions: 20},
			wantGroups:    1,
			wantUngrouped: 1,
		},
		{
			name: "min group size pushes members to ungrouped",
			profiles: []profile.Profile{
				profile.New("Radiant Joy", "", nil, []profile.Condition{cond("happy", 70)}, "", nil),
				profile.New("Content Glow", "", nil, []profile.Condition{cond("happy", 40)}, "", nil),
			},
			cfg:           GroupConfig{NumGroups: 1, MinGroupSize: 3, MaxEmotions: 20},
			wantGroups:    0,
			wantUngrouped: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, ungrouped, err := GroupArchetypes(tt.profiles, tt.cfg)
			if err != nil {
				t.Fatalf("GroupArchetypes() error = %v", err)
			}
			if len(groups) != tt.wantGroups {
				t.Errorf("GroupArchetypes() groups = %d, want %d", len(groups), tt.wantGroups)
			}
			if len(ungrouped) != tt.wantUngrouped {
				t.Errorf("GroupArchetypes() ungrouped = %d, want %d", len(ungrouped), tt.wantUngrouped)
			}
		})
	}
}

func TestGroupArchetypes_PreservesEveryProfile(t *testing.T) {
	profiles := []profile.Profile{
		profile.New("Radiant Joy", "", nil, []profile.Condition{cond("happy", 70)}, "", nil),
		profile.New("Content Glow", "", nil, []profile.Condition{cond("happy", 40)}, "", nil),
		profile.New("Deep Melancholy", "", nil, []profile.Condition{cond("sad", 50)}, "", nil),
		profile.New("Quiet Sadness", "", nil, []profile.Condition{cond("sad", 21), cond("neutral", 15)}, "", nil),
		profile.New("Burning Anger", "", nil, []profile.Condition{cond("angry", 60)}, "", nil),
		profile.New("Simmering Frustration", "", nil, []profile.Condition{cond("angry", 30), cond("sad", 20)}, "", nil),
		profile.New("Neutral Balance", "", nil, nil, "balanced", nil),
	}

	groups, ungrouped, err := GroupArchetypes(profiles, DefaultGroupConfig())
	if err != nil {
		t.Fatalf("GroupArchetypes() error = %v", err)
	}

	seen := make(map[string]int)
	for _, g := range groups {
		if g.Name == "" {
			t.Error("group has empty name")
		}
		for i := 1; i < len(g.Profiles); i++ {
			if positionOf(profiles, g.Profiles[i-1].Label) > positionOf(profiles, g.Profiles[i].Label) {
				t.Errorf("group %q members out of catalog order", g.Name)
			}
		}
		for _, p := range g.Profiles {
			seen[p.Label]++
		}
	}
	for _, p := range ungrouped {
		seen[p.Label]++
	}

	for _, p := range profiles {
		if seen[p.Label] != 1 {
			t.Errorf("profile %q appeared %d times, want 1", p.Label, seen[p.Label])
		}
	}

	for i := 1; i < len(groups); i++ {
		if len(groups[i-1].Profiles) < len(groups[i].Profiles) {
			t.Errorf("groups not sorted by size: %d before %d", len(groups[i-1].Profiles), len(groups[i].Profiles))
		}
	}
}

func positionOf(profiles []profile.Profile, label string) int {
	for i, p := range profiles {
		if p.Label == label {
			return i
		}
	}
	return -1
}

func TestBuildEmotionVocabulary(t *testing.T) {
	obs := []archetypeObservation{
		{profile: profile.New("A", "", nil, []profile.Condition{cond("sad", 10), cond("happy", 5)}, "", nil)},
		{profile: profile.New("B", "", nil, []profile.Condition{cond("sad", 20)}, "", nil)},
		{profile: profile.New("C", "", nil, []profile.Condition{cond("angry", 20), cond("sad", 1)}, "", nil)},
	}

	tests := []struct {
		name        string
		maxEmotions int
		want        []string
	}{
		{name: "all emotions by count then name", maxEmotions: 10, want: []string{"sad", "angry", "happy"}},
		{name: "limited", maxEmotions: 2, want: []string{"sad", "angry"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildEmotionVocabulary(obs, tt.maxEmotions)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("buildEmotionVocabulary() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildThresholdVector(t *testing.T) {
	vocabulary := []string{"happy", "sad", "angry"}
	p := profile.New("A", "", nil, []profile.Condition{cond("happy", 50), cond("angry", 150), cond("fear", 40)}, "", nil)

	got := buildThresholdVector(p, vocabulary)
	want := clusters.Coordinates{0.75, 0, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("buildThresholdVector() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTopEmotions(t *testing.T) {
	tests := []struct {
		name       string
		centroid   clusters.Coordinates
		vocabulary []string
		n          int
		want       []string
	}{
		{
			name:       "top two",
			centroid:   clusters.Coordinates{0.1, 0.9, 0.5},
			vocabulary: []string{"happy", "sad", "angry"},
			n:          2,
			want:       []string{"sad", "angry"},
		},
		{
			name:       "zero weights skipped",
			centroid:   clusters.Coordinates{0, 0.6, 0},
			vocabulary: []string{"happy", "sad", "angry"},
			n:          3,
			want:       []string{"sad"},
		},
		{
			name:       "empty centroid",
			centroid:   nil,
			vocabulary: []string{"happy"},
			n:          3,
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractTopEmotions(tt.centroid, tt.vocabulary, tt.n)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("extractTopEmotions() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGroupName(t *testing.T) {
	if got := groupName(nil); got != "Mixed" {
		t.Errorf("groupName(nil) = %q, want Mixed", got)
	}
	if got := groupName([]string{"happy", "surprise"}); got != "happy & surprise" {
		t.Errorf("groupName() = %q, want %q", got, "happy & surprise")
	}
}
