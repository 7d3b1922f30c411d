// Package collection holds ordered image lists with positionally aligned
// names, and the all-or-nothing refill used to reflect engine results back
// into a caller's list.
package collection

import (
	"github.com/ironsheep/pixel-marshal/internal/pixel"
)

// UnnamedPlaceholder pads names when a list has more images than names.
const UnnamedPlaceholder = "[unnamed]"

// Collection is an ordered list of images and their names.
//
// Names[i] labels Images[i]. Between invocations the two slices may differ
// in length; an invocation always leaves them equal. A Collection is owned by
// one goroutine at a time.
type Collection struct {
	Images []*pixel.Buffer
	Names  []string
}

// New returns a collection holding copies of the given slices. The buffers
// themselves are shared, not cloned.
func New(images []*pixel.Buffer, names []string) *Collection {
	c := &Collection{}
	if len(images) > 0 {
		c.Images = append([]*pixel.Buffer(nil), images...)
	}
	if len(names) > 0 {
		c.Names = append([]string(nil), names...)
	}
	return c
}

// Len returns the number of images.
func (c *Collection) Len() int {
	return len(c.Images)
}

// Clone returns a deep copy: every buffer is cloned into private storage and
// names are reconciled to the image count.
func (c *Collection) Clone() *Collection {
	images := make([]*pixel.Buffer, len(c.Images))
	for i, img := range c.Images {
		images[i] = img.Clone()
	}
	return &Collection{Images: images, Names: ReconcileNames(c.Names, len(images))}
}

// Refill replaces the collection's contents with images and names.
//
// Both slices are replaced, never patched by index, and the previous backing
// arrays are not reused. Names are truncated or padded to len(images).
func (c *Collection) Refill(images []*pixel.Buffer, names []string) {
	fresh := make([]*pixel.Buffer, len(images))
	copy(fresh, images)
	c.Images = fresh
	c.Names = ReconcileNames(names, len(images))
}

// ReconcileNames returns a new slice of exactly n names: the first n of names,
// padded with UnnamedPlaceholder if there are fewer.
func ReconcileNames(names []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		if i < len(names) {
			out[i] = names[i]
		} else {
			out[i] = UnnamedPlaceholder
		}
	}
	return out
}
