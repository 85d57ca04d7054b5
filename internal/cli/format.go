package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/saeedalam/dramarec/pkg/types"
)

var genreEmoji = map[string]string{
	"Romance": "❤", "Drama": "🎭", "Comedy": "😂", "Medical": "🩺",
	"Action": "🔥", "Music": "🎵", "Office": "🏢", "School": "🏫",
	"Supernatural": "👻", "Sci-Fi": "👽", "Business": "💼", "Historical": "🏰",
	"Thriller": "😱", "Crime": "🕵", "Youth": "🧒", "Fantasy": "🦄",
	"Mystery": "🔍", "Life": "🌱", "Food": "🍜", "Sports": "⚽",
}

// decorateGenres prefixes known genres with an emoji for display.
func decorateGenres(genres []string) string {
	if len(genres) == 0 {
		return "Not specified"
	}
	parts := make([]string, len(genres))
	for i, g := range genres {
		if e, ok := genreEmoji[g]; ok {
			parts[i] = e + " " + g
		} else {
			parts[i] = g
		}
	}
	return strings.Join(parts, ", ")
}

func orNotSpecified(values []string) string {
	if len(values) == 0 {
		return "Not specified"
	}
	return strings.Join(values, ", ")
}

func printItem(w io.Writer, rank int, item types.Item) {
	if rank > 0 {
		fmt.Fprintf(w, "%2d. %s", rank, item.Title)
	} else {
		fmt.Fprintf(w, "%s", item.Title)
	}
	if item.Year > 0 {
		fmt.Fprintf(w, " (%d)", item.Year)
	}
	fmt.Fprintf(w, "  ⭐ %.1f/10\n", item.Rating)
	fmt.Fprintf(w, "    Genres: %s\n", decorateGenres(item.Genres))
	if len(item.MoodTags) > 0 {
		fmt.Fprintf(w, "    Mood:   %s\n", orNotSpecified(item.MoodTags))
	}
	if len(item.MainLeads) > 0 {
		fmt.Fprintf(w, "    Leads:  %s\n", orNotSpecified(item.MainLeads))
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
