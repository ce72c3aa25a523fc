package catalog

import (
	"sort"
	"time"

	"mediabrowse/catalogservice/internal/domain"
)

const (
	moviePageSize    = 10
	tvPageSize       = 9
	combinedPageSize = 10
)

func uiPageSize(mediaType domain.MediaType) int {
	if mediaType == domain.MediaTypeTV {
		return tvPageSize
	}
	return moviePageSize
}

// upstreamPageFor maps a UI page onto the 20-item upstream page holding it.
func upstreamPageFor(uiPage int) int {
	if uiPage < 1 {
		uiPage = 1
	}
	return (uiPage + 1) / 2
}

// halfOfBatch picks the UI page's half of an upstream batch: odd pages take
// items[0:size], even pages items[size:2*size], clamped to the batch.
func halfOfBatch(items []domain.MediaItem, uiPage, size int) []domain.MediaItem {
	start := 0
	if uiPage%2 == 0 {
		start = size
	}
	return window(items, start, start+size)
}

// localPage slices an already ordered list for a locally paginated UI page.
func localPage(items []domain.MediaItem, uiPage, size int) []domain.MediaItem {
	if uiPage < 1 {
		uiPage = 1
	}
	return window(items, (uiPage-1)*size, uiPage*size)
}

func window(items []domain.MediaItem, start, end int) []domain.MediaItem {
	if start >= len(items) {
		return []domain.MediaItem{}
	}
	if end > len(items) {
		end = len(items)
	}
	out := make([]domain.MediaItem, end-start)
	copy(out, items[start:end])
	return out
}

func pageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// sortByDateDesc orders items newest first by release or first-air date.
// Items without a parseable date go last; ties keep upstream order.
func sortByDateDesc(items []domain.MediaItem) {
	dates := make(map[string]time.Time, len(items))
	for _, item := range items {
		if parsed, err := time.Parse("2006-01-02", item.Date()); err == nil {
			dates[item.Key()] = parsed
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		left, leftOK := dates[items[i].Key()]
		right, rightOK := dates[items[j].Key()]
		switch {
		case leftOK && rightOK:
			return left.After(right)
		case leftOK:
			return true
		default:
			return false
		}
	})
}
