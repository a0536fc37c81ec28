package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DuplicateKey identifies items that describe the same piece.
type DuplicateKey struct {
	Country      string `json:"country"`
	Year         string `json:"year"`
	Denomination string `json:"denomination"`
}

type DuplicateGroup struct {
	Key   DuplicateKey `json:"key"`
	Items []Item       `json:"items"`
	Count int          `json:"count"`
}

func duplicateKey(item *Item) DuplicateKey {
	year := "none"
	if item.Year != nil {
		year = strconv.Itoa(*item.Year)
	}
	return DuplicateKey{
		Country:      strings.ToLower(strings.TrimSpace(item.Country)),
		Year:         year,
		Denomination: strings.ToLower(strings.TrimSpace(item.Denomination())),
	}
}

// FindDuplicates groups items sharing country, year and denomination. Only
// groups with two or more members are returned, in order of first appearance.
func FindDuplicates(items []Item) []DuplicateGroup {
	index := make(map[DuplicateKey]int)
	var groups []DuplicateGroup
	for i := range items {
		key := duplicateKey(&items[i])
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, DuplicateGroup{Key: key})
		}
		groups[pos].Items = append(groups[pos].Items, items[i])
		groups[pos].Count++
	}

	duplicates := make([]DuplicateGroup, 0, len(groups))
	for _, g := range groups {
		if g.Count >= 2 {
			duplicates = append(duplicates, g)
		}
	}
	return duplicates
}

// MergeItems folds items into the first one and returns the merged record
// along with the ids of the items that should be removed. items must not be
// empty.
func MergeItems(items []Item) (Item, []uuid.UUID) {
	base := items[0]
	others := items[1:]

	merged := base
	merged.Quantity = 0
	var notes []string
	seenNotes := make(map[string]struct{})
	var value *float64
	removed := make([]uuid.UUID, 0, len(others))

	for i := range items {
		item := &items[i]
		merged.Quantity += item.Quantity

		if n := strings.TrimSpace(item.Notes); n != "" {
			if _, ok := seenNotes[n]; !ok {
				seenNotes[n] = struct{}{}
				notes = append(notes, n)
			}
		}

		if merged.ReferenceURL == "" && strings.TrimSpace(item.ReferenceURL) != "" {
			merged.ReferenceURL = strings.TrimSpace(item.ReferenceURL)
		}

		if item.Value != nil && (value == nil || *item.Value > *value) {
			v := *item.Value
			value = &v
		}

		if i > 0 {
			removed = append(removed, item.ID)
		}
	}

	merged.Notes = strings.Join(notes, "\n\n")
	merged.Value = value

	if IsPlaceholderImage(base.ImageURL) {
		for _, other := range others {
			if !IsPlaceholderImage(other.ImageURL) {
				merged.ImageURL = other.ImageURL
				break
			}
		}
	}

	merged.Classify()
	return merged, removed
}
