package aggregate

import (
	"sort"

	"lifeos/internal/core"
)

type TagCount struct {
	Tag   string `json:"tag" yaml:"tag"`
	Count int    `json:"count" yaml:"count"`
}

// TopTags counts every tag occurrence and returns the k most frequent.
// Ties keep the order in which tags were first seen.
func TopTags(entries []core.DomainEntry, k int) []TagCount {
	if k <= 0 {
		return []TagCount{}
	}
	counts := []TagCount{}
	pos := map[string]int{}
	for _, e := range entries {
		for _, tag := range e.Tags {
			if i, ok := pos[tag]; ok {
				counts[i].Count++
				continue
			}
			pos[tag] = len(counts)
			counts = append(counts, TagCount{Tag: tag, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > k {
		counts = counts[:k]
	}
	return counts
}
