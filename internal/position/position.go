// Package position assigns structural byline positions to authors.
package position

// Label identifies an author's structural position within a publication's
// author list.
type Label string

const (
	First       Label = "first"
	Second      Label = "second"
	Middle      Label = "middle"
	Penultimate Label = "penultimate"
	Last        Label = "last"
)

// Assign returns one label per author slot for a byline of n authors:
//
//	n=1   [first]
//	n=2   [first, last]
//	n=3   [first, second, last]
//	n>=4  [first, second, middle..., penultimate, last]
//
// n <= 0 returns an empty slice.
func Assign(n int) []Label {
	if n <= 0 {
		return []Label{}
	}

	labels := make([]Label, n)
	labels[0] = First
	switch n {
	case 1:
		return labels
	case 2:
		labels[1] = Last
		return labels
	case 3:
		labels[1] = Second
		labels[2] = Last
		return labels
	}

	labels[1] = Second
	for i := 2; i < n-2; i++ {
		labels[i] = Middle
	}
	labels[n-2] = Penultimate
	labels[n-1] = Last
	return labels
}
