package profile

import (
	"testing"

	"github.com/saeedalam/dramarec/pkg/types"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		item     types.Item
		expected string
	}{
		{
			name: "All fields",
			item: types.Item{
				Title:     "2gether",
				Genres:    []string{"Romance", "Comedy"},
				MoodTags:  []string{"Sweet", "Fluffy"},
				Summary:   "A college student  fakes a relationship.",
				MainLeads: []string{"Bright", "Win"},
			},
			expected: "romance, comedy sweet, fluffy a college student fakes a relationship. bright, win",
		},
		{
			name:     "Missing fields",
			item:     types.Item{Title: "Untitled", Summary: "Only a SUMMARY"},
			expected: "only a summary",
		},
		{
			name:     "Nothing at all",
			item:     types.Item{Title: "Empty"},
			expected: "",
		},
		{
			name: "Blank list entries are dropped",
			item: types.Item{
				Genres:    []string{" Drama ", "", "  "},
				MainLeads: []string{"Off", ""},
			},
			expected: "drama off",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.item)
			if got != tt.expected {
				t.Errorf("Build() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestBuildIgnoresTitleAndNumbers(t *testing.T) {
	a := types.Item{ID: 1, Title: "A", Year: 2020, Rating: 9, Genres: []string{"Romance"}}
	b := types.Item{ID: 2, Title: "B", Year: 2021, Rating: 3, Genres: []string{"Romance"}}

	if Build(a) != Build(b) {
		t.Errorf("profiles differ: %q vs %q", Build(a), Build(b))
	}
}

func TestBuildAllPreservesOrder(t *testing.T) {
	items := []types.Item{
		{Summary: "first"},
		{Summary: "second"},
		{Summary: "third"},
	}

	profiles := BuildAll(items)
	if len(profiles) != 3 {
		t.Fatalf("Expected 3 profiles, got %d", len(profiles))
	}
	for i, want := range []string{"first", "second", "third"} {
		if profiles[i] != want {
			t.Errorf("profiles[%d] = %q, want %q", i, profiles[i], want)
		}
	}
}
