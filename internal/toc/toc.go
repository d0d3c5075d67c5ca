// Package toc builds derived views over the notes tree: the directory
// outline and a date-indexed calendar of dated elements.
package toc

import (
	"path"
	"sort"
	"strings"

	"github.com/starford/quire/internal/elements"
	"github.com/starford/quire/internal/storage"
)

// Node is a directory or note in the outline.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Dir      bool    `json:"dir"`
	Children []*Node `json:"children,omitempty"`
}

// Builder computes views from a store and its extractor.
type Builder struct {
	store     storage.Provider
	extractor *elements.Extractor
}

// New creates a Builder.
func New(store storage.Provider, extractor *elements.Extractor) *Builder {
	return &Builder{store: store, extractor: extractor}
}

// Tree returns the outline of dir: directories first, then notes, each
// sorted by name.
func (b *Builder) Tree(dir string) (*Node, error) {
	dir = storage.Clean(dir)
	paths, err := b.store.Paths(dir)
	if err != nil {
		return nil, err
	}
	root := &Node{Name: path.Base(dir), Path: dir, Dir: true}
	dirs := map[string]*Node{dir: root}

	var ensure func(p string) *Node
	ensure = func(p string) *Node {
		if n, ok := dirs[p]; ok {
			return n
		}
		parent := ensure(path.Dir(p))
		n := &Node{Name: path.Base(p), Path: p, Dir: true}
		parent.Children = append(parent.Children, n)
		dirs[p] = n
		return n
	}
	for _, p := range paths {
		parent := ensure(path.Dir(p))
		parent.Children = append(parent.Children, &Node{Name: path.Base(p), Path: p})
	}
	sortNode(root)
	return root, nil
}

func sortNode(n *Node) {
	sort.Slice(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.Dir != b.Dir {
			return a.Dir
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for _, c := range n.Children {
		if c.Dir {
			sortNode(c)
		}
	}
}
