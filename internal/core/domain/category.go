package domain

import "sort"

// CategoryInfo is a live projection over the published post set; Count is
// recomputed on every fetch, never persisted.
type CategoryInfo struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// TagCount pairs a tag with its usage frequency among published posts.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// CountCategories tallies category membership across published posts and
// returns the result sorted by count descending, name ascending on ties.
func CountCategories(posts []*Post) []CategoryInfo {
	counts := make(map[string]int)
	for _, p := range posts {
		if !p.Published() {
			continue
		}
		for _, c := range p.Categories {
			counts[c]++
		}
	}

	infos := make([]CategoryInfo, 0, len(counts))
	for name, count := range counts {
		infos = append(infos, CategoryInfo{Name: name, Color: "default", Count: count})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Count != infos[j].Count {
			return infos[i].Count > infos[j].Count
		}
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// CountTags tallies tag usage across published posts.
func CountTags(posts []*Post) map[string]int {
	counts := make(map[string]int)
	for _, p := range posts {
		if !p.Published() {
			continue
		}
		for _, t := range p.Tags {
			counts[t]++
		}
	}
	return counts
}

// PopularTags returns the top limit tags by usage, count descending,
// tag ascending on ties.
func PopularTags(posts []*Post, limit int) []TagCount {
	counts := CountTags(posts)

	tags := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		tags = append(tags, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})

	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}
