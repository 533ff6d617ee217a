// Package treehash computes a digest over a set of written files using
// the h1 hash from [golang.org/x/mod/sumdb/dirhash], the same hash the go
// command records in go.sum for module trees.
package treehash

import (
	"io"
	"os"
	"slices"

	"golang.org/x/mod/sumdb/dirhash"
)

// DefaultHash is the hash used by Files.
var DefaultHash dirhash.Hash = dirhash.Hash1

// Files returns the hash of the named files. Duplicate names are
// hashed once, and the order of names does not matter.
func Files(names []string) (string, error) {
	return FilesWith(names, DefaultHash)
}

// FilesWith is like Files but uses the given hash function.
func FilesWith(names []string, hash dirhash.Hash) (string, error) {
	names = slices.Clone(names)
	slices.Sort(names)
	names = slices.Compact(names)
	return hash(names, func(name string) (io.ReadCloser, error) {
		return os.Open(name)
	})
}
