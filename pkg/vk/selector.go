package vk

import "sort"

// LargestSize returns the rendition with the largest width*height. When
// several share the maximal area the first one wins. ok is false for an
// empty list.
func LargestSize(sizes []SizeVariant) (best SizeVariant, ok bool) {
	if len(sizes) == 0 {
		return SizeVariant{}, false
	}

	best = sizes[0]
	for _, s := range sizes[1:] {
		if s.Area() > best.Area() {
			best = s
		}
	}
	return best, true
}

// SelectTop reduces items to at most limit records ordered by likes,
// highest first. Items without renditions are skipped. Ties keep the order
// the API returned them in.
func SelectTop(items []PhotoItem, limit int) []PhotoRecord {
	if limit <= 0 {
		limit = DefaultLimit
	}

	records := make([]PhotoRecord, 0, len(items))
	for _, item := range items {
		size, ok := LargestSize(item.Sizes)
		if !ok {
			continue
		}
		records = append(records, PhotoRecord{
			Likes:    item.Likes.Count,
			URL:      size.URL,
			Date:     item.Date,
			PhotoID:  item.ID,
			SizeType: size.Type,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Likes > records[j].Likes
	})

	if len(records) > limit {
		records = records[:limit]
	}
	return records
}
