package receiver

import (
	"sort"

	"github.com/samber/lo"

	"go.viam.com/stereomesh/rimage"
)

// ImageList is a bounded history of one component's images, ordered by timestamp. It is owned
// by the acquisition loop and not safe for concurrent use.
type ImageList struct {
	capacity int
	images   []*rimage.RawImage
}

// NewImageList returns an empty list holding at most capacity images.
func NewImageList(capacity int) *ImageList {
	return &ImageList{capacity: capacity, images: make([]*rimage.RawImage, 0, capacity+1)}
}

// Len is the number of buffered images.
func (l *ImageList) Len() int {
	return len(l.images)
}

// Add inserts img at its timestamp position, after any images with the same timestamp. When
// the list is over capacity the oldest image is evicted. Add reports whether img itself is still
// buffered.
func (l *ImageList) Add(img *rimage.RawImage) bool {
	i := sort.Search(len(l.images), func(i int) bool {
		return l.images[i].Timestamp > img.Timestamp
	})
	l.images = append(l.images, nil)
	copy(l.images[i+1:], l.images[i:])
	l.images[i] = img

	over := len(l.images) - l.capacity
	if over <= 0 {
		return true
	}
	l.images = l.images[over:]
	return i >= over
}

// FindClosest returns the image whose timestamp is nearest ts and at most tolerance away.
// Among equally near images the earliest wins.
func (l *ImageList) FindClosest(ts, tolerance uint64) (*rimage.RawImage, bool) {
	candidates := lo.Filter(l.images, func(img *rimage.RawImage, _ int) bool {
		return absDiff(img.Timestamp, ts) <= tolerance
	})
	if len(candidates) == 0 {
		return nil, false
	}
	return lo.MinBy(candidates, func(a, b *rimage.RawImage) bool {
		return absDiff(a.Timestamp, ts) < absDiff(b.Timestamp, ts)
	}), true
}

// RemoveUntil drops every image with a timestamp at or before ts.
func (l *ImageList) RemoveUntil(ts uint64) {
	l.images = lo.DropWhile(l.images, func(img *rimage.RawImage) bool {
		return img.Timestamp <= ts
	})
}

// timestamps lists the buffered timestamps in order.
func (l *ImageList) timestamps() []uint64 {
	return lo.Map(l.images, func(img *rimage.RawImage, _ int) uint64 {
		return img.Timestamp
	})
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
