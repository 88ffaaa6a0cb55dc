// Package clustering groups mood archetypes by the emotions their conditions depend on.
// Archetypes that land in the same group compete for the same inputs, which is
// useful when ordering a catalog for tie-breaks.
package clustering

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/moodmatch/internal/profile"
)

// GroupConfig holds archetype grouping parameters.
type GroupConfig struct {
	NumGroups    int // Number of groups to create (default: 3)
	MinGroupSize int // Minimum profiles per group (smaller groups become ungrouped)
	MaxEmotions  int // Maximum emotions used as vector dimensions (default: 20)
}

// DefaultGroupConfig returns the recommended default configuration.
func DefaultGroupConfig() GroupConfig {
	return GroupConfig{
		NumGroups:    3,
		MinGroupSize: 1,
		MaxEmotions:  20,
	}
}

// Group is a set of archetypes with similar conditions.
type Group struct {
	Name        string            // Dominant emotions: "happy & surprise"
	Profiles    []profile.Profile // Members in catalog order
	TopEmotions []string          // Up to 3 dominant emotions
}

// archetypeObservation wraps a profile to implement clusters.Observation.
type archetypeObservation struct {
	position int
	profile  profile.Profile
	coords   clusters.Coordinates
}

func (o archetypeObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o archetypeObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// GroupArchetypes clusters profiles by their threshold vectors using k-means.
// Returns the groups and the profiles that could not be grouped: those without
// conditions and members of groups smaller than MinGroupSize.
func GroupArchetypes(profiles []profile.Profile, cfg GroupConfig) ([]Group, []profile.Profile, error) {
	if len(profiles) == 0 {
		return nil, nil, nil
	}

	def := DefaultGroupConfig()
	if cfg.NumGroups <= 0 {
		cfg.NumGroups = def.NumGroups
	}
	if cfg.MaxEmotions <= 0 {
		cfg.MaxEmotions = def.MaxEmotions
	}

	// Profiles without conditions have nothing to compare
	var valid []archetypeObservation
	var ungrouped []profile.Profile
	for i, p := range profiles {
		if p.HasConditions() {
			valid = append(valid, archetypeObservation{position: i, profile: p})
		} else {
			ungrouped = append(ungrouped, p)
		}
	}

	if len(valid) < cfg.NumGroups {
		for _, o := range valid {
			ungrouped = append(ungrouped, o.profile)
		}
		return nil, ungrouped, nil
	}

	vocabulary := buildEmotionVocabulary(valid, cfg.MaxEmotions)

	var obs clusters.Observations
	for i := range valid {
		valid[i].coords = buildThresholdVector(valid[i].profile, vocabulary)
		obs = append(obs, valid[i])
	}

	result, err := kmeans.New().Partition(obs, cfg.NumGroups)
	if err != nil {
		return nil, nil, fmt.Errorf("partitioning archetypes: %w", err)
	}

	var groups []Group
	for _, cluster := range result {
		var members []archetypeObservation
		for _, o := range cluster.Observations {
			if ao, ok := o.(archetypeObservation); ok {
				members = append(members, ao)
			}
		}
		if len(members) == 0 {
			continue
		}

		slices.SortFunc(members, func(a, b archetypeObservation) int {
			return a.position - b.position
		})
		memberProfiles := make([]profile.Profile, len(members))
		for i, m := range members {
			memberProfiles[i] = m.profile
		}

		if len(members) < cfg.MinGroupSize {
			ungrouped = append(ungrouped, memberProfiles...)
			continue
		}

		top := extractTopEmotions(cluster.Center, vocabulary, 3)
		groups = append(groups, Group{
			Name:        groupName(top),
			Profiles:    memberProfiles,
			TopEmotions: top,
		})
	}

	// Largest groups first, then by name for stable output
	slices.SortFunc(groups, func(a, b Group) int {
		if len(a.Profiles) != len(b.Profiles) {
			return len(b.Profiles) - len(a.Profiles)
		}
		return strings.Compare(a.Name, b.Name)
	})

	return groups, ungrouped, nil
}

// emotionCount tracks how many profiles use an emotion.
type emotionCount struct {
	name  string
	count int
}

// buildEmotionVocabulary returns the most used condition emotions, most frequent first.
func buildEmotionVocabulary(obs []archetypeObservation, maxEmotions int) []string {
	counts := make(map[string]int)
	for _, o := range obs {
		for emotion := range o.profile.PercentConditions {
			counts[emotion]++
		}
	}

	emotionCounts := make([]emotionCount, 0, len(counts))
	for name, count := range counts {
		emotionCounts = append(emotionCounts, emotionCount{name: name, count: count})
	}

	// Sort by count (descending), then name
	sort.Slice(emotionCounts, func(i, j int) bool {
		if emotionCounts[i].count != emotionCounts[j].count {
			return emotionCounts[i].count > emotionCounts[j].count
		}
		return emotionCounts[i].name < emotionCounts[j].name
	})

	n := min(maxEmotions, len(emotionCounts))
	vocabulary := make([]string, n)
	for i := 0; i < n; i++ {
		vocabulary[i] = emotionCounts[i].name
	}
	return vocabulary
}

// buildThresholdVector maps a profile's conditions onto the vocabulary.
// A required emotion scores between 0.5 and 1 depending on how high its
// threshold is; emotions the profile ignores score 0.
func buildThresholdVector(p profile.Profile, vocabulary []string) clusters.Coordinates {
	vector := make(clusters.Coordinates, len(vocabulary))
	for i, emotion := range vocabulary {
		threshold, ok := p.PercentConditions[emotion]
		if !ok {
			continue
		}
		scaled := min(max(threshold/100, 0), 1)
		vector[i] = 0.5 + 0.5*scaled
	}
	return vector
}

// extractTopEmotions returns the top n emotions from a centroid vector.
func extractTopEmotions(centroid clusters.Coordinates, vocabulary []string, n int) []string {
	if len(centroid) == 0 || len(vocabulary) == 0 {
		return nil
	}

	type emotionWeight struct {
		name   string
		weight float64
	}
	weights := make([]emotionWeight, len(vocabulary))
	for i, name := range vocabulary {
		weight := 0.0
		if i < len(centroid) {
			weight = centroid[i]
		}
		weights[i] = emotionWeight{name: name, weight: weight}
	}

	sort.SliceStable(weights, func(i, j int) bool {
		return weights[i].weight > weights[j].weight
	})

	result := make([]string, 0, n)
	for i := 0; i < len(weights) && len(result) < n; i++ {
		if weights[i].weight > 0 {
			result = append(result, weights[i].name)
		}
	}
	return result
}

func groupName(top []string) string {
	if len(top) == 0 {
		return "Mixed"
	}
	return strings.Join(top, " & ")
}
