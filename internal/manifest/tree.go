package manifest

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Tree is the ordered forest of structure nodes. Nodes live in a flat arena
// indexed by parent/children slices; moving, reordering, and deleting are
// index relinks, so subtrees survive every operation intact. Lookup maps keep
// path and ID resolution O(1).
type Tree struct {
	nodes    []Node
	parents  []int
	children [][]int
	live     []bool
	roots    []int
	byPath   map[string]int
	byID     map[uuid.UUID]int
}

const noParent = -1

// NewTree returns an empty structure tree.
func NewTree() *Tree {
	return &Tree{
		byPath: map[string]int{},
		byID:   map[uuid.UUID]int{},
	}
}

// Len reports the number of live nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byPath)
}

// Insert appends node as the last child of parentPath. An empty parentPath
// inserts a new root. The node path must be unique across the whole tree.
func (t *Tree) Insert(parentPath string, node Node) error {
	node.Path = normalizePath(node.Path)
	if node.Path == "" {
		return ErrNodePathRequired
	}
	if _, exists := t.byPath[node.Path]; exists {
		return &DuplicatePathError{Path: node.Path}
	}

	parentIndex := noParent
	if parentPath = normalizePath(parentPath); parentPath != "" {
		index, ok := t.byPath[parentPath]
		if !ok {
			return &NotFoundError{Resource: "structure node", Key: parentPath}
		}
		parentIndex = index
	}

	index := len(t.nodes)
	t.nodes = append(t.nodes, node)
	t.parents = append(t.parents, parentIndex)
	t.children = append(t.children, nil)
	t.live = append(t.live, true)

	if parentIndex == noParent {
		t.roots = append(t.roots, index)
	} else {
		t.children[parentIndex] = append(t.children[parentIndex], index)
	}

	t.byPath[node.Path] = index
	if node.ID != uuid.Nil {
		t.byID[node.ID] = index
	}
	return nil
}

// FindByPath resolves a node by its normalized path.
func (t *Tree) FindByPath(path string) (Node, bool) {
	if t == nil {
		return Node{}, false
	}
	index, ok := t.byPath[normalizePath(path)]
	if !ok {
		return Node{}, false
	}
	return t.nodes[index], true
}

// FindByID resolves a node by its identifier.
func (t *Tree) FindByID(id uuid.UUID) (Node, bool) {
	if t == nil || id == uuid.Nil {
		return Node{}, false
	}
	index, ok := t.byID[id]
	if !ok {
		return Node{}, false
	}
	return t.nodes[index], true
}

// Update replaces the stored fields for the node at path. The path itself is
// immutable; use Move to change tree position.
func (t *Tree) Update(path string, mutate func(*Node)) error {
	index, ok := t.byPath[normalizePath(path)]
	if !ok {
		return &NotFoundError{Resource: "structure node", Key: path}
	}
	if mutate == nil {
		return nil
	}

	node := t.nodes[index]
	previousID := node.ID
	mutate(&node)
	node.Path = t.nodes[index].Path
	t.nodes[index] = node

	if previousID != node.ID {
		if previousID != uuid.Nil {
			delete(t.byID, previousID)
		}
		if node.ID != uuid.Nil {
			t.byID[node.ID] = index
		}
	}
	return nil
}

// ChildrenOf returns the ordered children of path; an empty path returns the
// roots.
func (t *Tree) ChildrenOf(path string) []Node {
	if t == nil {
		return nil
	}
	indices := t.roots
	if path = normalizePath(path); path != "" {
		index, ok := t.byPath[path]
		if !ok {
			return nil
		}
		indices = t.children[index]
	}

	nodes := make([]Node, 0, len(indices))
	for _, index := range indices {
		if t.live[index] {
			nodes = append(nodes, t.nodes[index])
		}
	}
	return nodes
}

// ParentOf returns the parent node of path, if any.
func (t *Tree) ParentOf(path string) (Node, bool) {
	index, ok := t.byPath[normalizePath(path)]
	if !ok {
		return Node{}, false
	}
	parent := t.parents[index]
	if parent == noParent || !t.live[parent] {
		return Node{}, false
	}
	return t.nodes[parent], true
}

// Move relinks the subtree rooted at path under newParentPath at position.
// An empty newParentPath promotes the node to a root. Positions outside the
// sibling range append at the end. Moving a node under its own descendant is
// rejected.
func (t *Tree) Move(path, newParentPath string, position int) error {
	index, ok := t.byPath[normalizePath(path)]
	if !ok {
		return &NotFoundError{Resource: "structure node", Key: path}
	}

	newParent := noParent
	if newParentPath = normalizePath(newParentPath); newParentPath != "" {
		parentIndex, ok := t.byPath[newParentPath]
		if !ok {
			return &NotFoundError{Resource: "structure node", Key: newParentPath}
		}
		if parentIndex == index || t.isDescendant(parentIndex, index) {
			return ErrMoveIntoSubtree
		}
		newParent = parentIndex
	}

	t.detach(index)
	t.parents[index] = newParent
	if newParent == noParent {
		t.roots = insertAt(t.roots, index, position)
	} else {
		t.children[newParent] = insertAt(t.children[newParent], index, position)
	}
	return nil
}

// Reorder moves path to position among its current siblings.
func (t *Tree) Reorder(path string, position int) error {
	index, ok := t.byPath[normalizePath(path)]
	if !ok {
		return &NotFoundError{Resource: "structure node", Key: path}
	}
	parent := t.parents[index]

	t.detach(index)
	if parent == noParent {
		t.roots = insertAt(t.roots, index, position)
	} else {
		t.children[parent] = insertAt(t.children[parent], index, position)
	}
	return nil
}

// Remove deletes the node at path together with its whole subtree.
func (t *Tree) Remove(path string) error {
	index, ok := t.byPath[normalizePath(path)]
	if !ok {
		return &NotFoundError{Resource: "structure node", Key: path}
	}

	t.detach(index)
	t.removeSubtree(index)
	return nil
}

// Walk visits every live node depth-first in sibling order. Returning false
// from fn stops the walk.
func (t *Tree) Walk(fn func(node Node, depth int) bool) {
	if t == nil || fn == nil {
		return
	}
	t.walkIndices(t.roots, 0, fn)
}

func (t *Tree) walkIndices(indices []int, depth int, fn func(Node, int) bool) bool {
	for _, index := range indices {
		if !t.live[index] {
			continue
		}
		if !fn(t.nodes[index], depth) {
			return false
		}
		if !t.walkIndices(t.children[index], depth+1, fn) {
			return false
		}
	}
	return true
}

// Nodes returns every live node in walk order.
func (t *Tree) Nodes() []Node {
	if t == nil {
		return nil
	}
	nodes := make([]Node, 0, t.Len())
	t.Walk(func(node Node, _ int) bool {
		nodes = append(nodes, node)
		return true
	})
	return nodes
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	cloned := NewTree()
	var copyLevel func(indices []int, parentPath string)
	copyLevel = func(indices []int, parentPath string) {
		for _, index := range indices {
			if !t.live[index] {
				continue
			}
			node := t.nodes[index]
			_ = cloned.Insert(parentPath, node)
			copyLevel(t.children[index], node.Path)
		}
	}
	copyLevel(t.roots, "")
	return cloned
}

func (t *Tree) detach(index int) {
	parent := t.parents[index]
	if parent == noParent {
		t.roots = removeIndex(t.roots, index)
		return
	}
	t.children[parent] = removeIndex(t.children[parent], index)
}

func (t *Tree) removeSubtree(index int) {
	for _, child := range t.children[index] {
		if t.live[child] {
			t.removeSubtree(child)
		}
	}
	node := t.nodes[index]
	t.live[index] = false
	t.children[index] = nil
	t.parents[index] = noParent
	delete(t.byPath, node.Path)
	if node.ID != uuid.Nil {
		delete(t.byID, node.ID)
	}
}

func (t *Tree) isDescendant(candidate, ancestor int) bool {
	for current := t.parents[candidate]; current != noParent; current = t.parents[current] {
		if current == ancestor {
			return true
		}
	}
	return false
}

func insertAt(indices []int, index, position int) []int {
	if position < 0 || position >= len(indices) {
		return append(indices, index)
	}
	indices = append(indices, 0)
	copy(indices[position+1:], indices[position:])
	indices[position] = index
	return indices
}

func removeIndex(indices []int, index int) []int {
	for i, candidate := range indices {
		if candidate == index {
			return append(indices[:i], indices[i+1:]...)
		}
	}
	return indices
}

func normalizePath(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}

type nodeEnvelope struct {
	Node
	Children []nodeEnvelope `json:"children,omitempty"`
}

// MarshalJSON renders the arena as the nested forest used by manifest
// documents.
func (t *Tree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.envelopes(t.roots))
}

func (t *Tree) envelopes(indices []int) []nodeEnvelope {
	out := make([]nodeEnvelope, 0, len(indices))
	for _, index := range indices {
		if !t.live[index] {
			continue
		}
		out = append(out, nodeEnvelope{
			Node:     t.nodes[index],
			Children: t.envelopes(t.children[index]),
		})
	}
	return out
}

// UnmarshalJSON rebuilds the arena from the nested forest representation.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var envelopes []nodeEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return err
	}

	rebuilt := NewTree()
	var insertLevel func(envelopes []nodeEnvelope, parentPath string) error
	insertLevel = func(envelopes []nodeEnvelope, parentPath string) error {
		for _, envelope := range envelopes {
			if err := rebuilt.Insert(parentPath, envelope.Node); err != nil {
				return err
			}
			if err := insertLevel(envelope.Children, normalizePath(envelope.Node.Path)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insertLevel(envelopes, ""); err != nil {
		return err
	}

	*t = *rebuilt
	return nil
}
