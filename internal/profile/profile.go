// Package profile merges the descriptive fields of an item into the single
// text blob the vector space is fitted on.
//
// The profile is the item's genres, mood tags, summary and main leads, in that
// order. List fields are joined with ", ", fields with a single space, the
// result is lowercased and runs of whitespace are collapsed. Missing fields
// contribute nothing.
package profile

import (
	"strings"

	"github.com/saeedalam/dramarec/pkg/types"
)

const listSeparator = ", "

// Build returns the normalized text profile of an item.
func Build(item types.Item) string {
	parts := []string{
		joinList(item.Genres),
		joinList(item.MoodTags),
		item.Summary,
		joinList(item.MainLeads),
	}
	return normalize(strings.Join(parts, " "))
}

// BuildAll builds profiles for a corpus, preserving item order.
func BuildAll(items []types.Item) []string {
	profiles := make([]string, len(items))
	for i, item := range items {
		profiles[i] = Build(item)
	}
	return profiles
}

func joinList(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, listSeparator)
}

// normalize lowercases and collapses whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
