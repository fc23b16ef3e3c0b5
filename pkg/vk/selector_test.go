package vk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id int64, likes int, date int64, sizes ...SizeVariant) PhotoItem {
	return PhotoItem{ID: id, Date: date, Likes: Likes{Count: likes}, Sizes: sizes}
}

func size(t string, w, h int) SizeVariant {
	return SizeVariant{Type: t, URL: "https://sun.userapi.com/" + t + ".jpg", Width: w, Height: h}
}

func TestLargestSize(t *testing.T) {
	tests := []struct {
		name     string
		sizes    []SizeVariant
		wantType string
		wantOK   bool
	}{
		{"empty", nil, "", false},
		{"single", []SizeVariant{size("s", 75, 75)}, "s", true},
		{"largest in middle", []SizeVariant{size("s", 75, 75), size("w", 2560, 1440), size("m", 130, 130)}, "w", true},
		{"tie keeps first", []SizeVariant{size("x", 100, 200), size("y", 200, 100)}, "x", true},
		{"area beats width", []SizeVariant{size("wide", 1000, 10), size("square", 200, 200)}, "square", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LargestSize(tt.sizes)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantType, got.Type)
		})
	}
}

func TestSelectTopOrdersByLikesAndDropsTail(t *testing.T) {
	likes := []int{10, 50, 30, 5, 20, 1}
	items := make([]PhotoItem, 0, len(likes))
	for i, l := range likes {
		items = append(items, item(int64(i+1), l, int64(1600000000+i), size("m", 130, 130), size("z", 1080, 1024)))
	}

	records := SelectTop(items, 5)

	require.Len(t, records, 5)
	got := make([]int, 0, len(records))
	for _, r := range records {
		got = append(got, r.Likes)
		assert.Equal(t, "z", r.SizeType)
	}
	assert.Equal(t, []int{50, 30, 20, 10, 5}, got)
}

func TestSelectTopPicksLargestRendition(t *testing.T) {
	items := []PhotoItem{
		item(1, 3, 100, size("s", 75, 56), size("y", 807, 605), size("x", 604, 453)),
	}

	records := SelectTop(items, 5)

	require.Len(t, records, 1)
	assert.Equal(t, "https://sun.userapi.com/y.jpg", records[0].URL)
	assert.Equal(t, int64(100), records[0].Date)
	assert.Equal(t, int64(1), records[0].PhotoID)
}

func TestSelectTopSkipsItemsWithoutSizes(t *testing.T) {
	items := []PhotoItem{
		item(1, 100, 1),
		item(2, 7, 2, size("m", 10, 10)),
	}

	records := SelectTop(items, 5)

	require.Len(t, records, 1)
	assert.Equal(t, 7, records[0].Likes)
	assert.NotEmpty(t, records[0].URL)
}

func TestSelectTopSizeIsMinOfLimitAndUsableItems(t *testing.T) {
	var items []PhotoItem
	for i := 0; i < 3; i++ {
		items = append(items, item(int64(i), i, 0, size("m", 1, 1)))
	}
	items = append(items, item(99, 1000, 0))

	assert.Len(t, SelectTop(items, 5), 3)
	assert.Len(t, SelectTop(items, 2), 2)
	assert.Empty(t, SelectTop(nil, 5))
}

func TestSelectTopStableOnEqualLikes(t *testing.T) {
	items := []PhotoItem{
		item(1, 5, 10, size("m", 1, 1)),
		item(2, 9, 20, size("m", 1, 1)),
		item(3, 5, 30, size("m", 1, 1)),
	}

	records := SelectTop(items, 0)

	require.Len(t, records, 3)
	assert.Equal(t, []int64{2, 1, 3}, []int64{records[0].PhotoID, records[1].PhotoID, records[2].PhotoID})
}
