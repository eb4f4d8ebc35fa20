package collection

import "fmt"

// index is an id-keyed table over one document snapshot: every node by id,
// and every node's parent collection id ("" for root-level nodes). Cycle
// checks and ancestor walks become O(depth) map lookups, and ownership
// transfer on move is an explicit detach/attach pair instead of an implied
// side effect of recursive splicing.
type index struct {
	cfg     *Config
	nodes   map[string]*Node
	parents map[string]string
}

// buildIndex walks the document once with an explicit stack and returns the
// node table. A duplicate id violates the forest-wide uniqueness invariant
// and marks the document as malformed.
func buildIndex(cfg *Config) (*index, error) {
	ix := &index{
		cfg:     cfg,
		nodes:   make(map[string]*Node),
		parents: make(map[string]string),
	}

	type frame struct {
		node     *Node
		parentID string
	}
	var stack []frame
	for _, root := range cfg.Collections {
		stack = append(stack, frame{node: root, parentID: ""})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, exists := ix.nodes[f.node.ID]; exists {
			return nil, fmt.Errorf("duplicate node id %q", f.node.ID)
		}
		ix.nodes[f.node.ID] = f.node
		ix.parents[f.node.ID] = f.parentID

		for _, child := range f.node.Children {
			stack = append(stack, frame{node: child, parentID: f.node.ID})
		}
	}

	return ix, nil
}

// get returns the node with the given id, or nil.
func (ix *index) get(id string) *Node {
	return ix.nodes[id]
}

// siblings returns the ordered child list under parentID ("" for the root
// level).
func (ix *index) siblings(parentID string) []*Node {
	if parentID == "" {
		return ix.cfg.Collections
	}
	if parent := ix.nodes[parentID]; parent != nil {
		return parent.Children
	}
	return nil
}

// ancestorPath returns the ordered collection ids from root to the node's
// immediate parent, excluding the node itself. Nil if the node is unknown.
func (ix *index) ancestorPath(id string) []string {
	if _, ok := ix.nodes[id]; !ok {
		return nil
	}
	var path []string
	for cur := ix.parents[id]; cur != ""; cur = ix.parents[cur] {
		path = append(path, cur)
	}
	// Walked leaf-to-root; reverse into root-to-parent order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// isSelfOrDescendant reports whether candidate is nodeID itself or lies
// anywhere inside nodeID's subtree.
func (ix *index) isSelfOrDescendant(nodeID, candidate string) bool {
	for cur := candidate; cur != ""; cur = ix.parents[cur] {
		if cur == nodeID {
			return true
		}
	}
	return false
}

// hasSiblingNamed reports whether any node under parentID carries the given
// name, excluding at most one node id (the node being renamed or moved).
func (ix *index) hasSiblingNamed(parentID, name, excludeID string) bool {
	for _, sibling := range ix.siblings(parentID) {
		if sibling.ID != excludeID && sibling.Name == name {
			return true
		}
	}
	return false
}

// detach removes the node from its parent's child list (or the root level)
// and drops it from the parent map. The node itself and its subtree stay in
// the node table so it can be re-attached. Returns false if the node is
// unknown.
func (ix *index) detach(id string) bool {
	node, ok := ix.nodes[id]
	if !ok {
		return false
	}

	parentID := ix.parents[id]
	if parentID == "" {
		ix.cfg.Collections = removeNode(ix.cfg.Collections, node)
	} else if parent := ix.nodes[parentID]; parent != nil {
		parent.Children = removeNode(parent.Children, node)
	}
	delete(ix.parents, id)
	return true
}

// attach appends the node to parentID's child list (or the root level) and
// records its new parent.
func (ix *index) attach(parentID string, node *Node) {
	if parentID == "" {
		ix.cfg.Collections = append(ix.cfg.Collections, node)
	} else if parent := ix.nodes[parentID]; parent != nil {
		parent.Children = append(parent.Children, node)
	}
	ix.nodes[node.ID] = node
	ix.parents[node.ID] = parentID
}

// remove deletes the node and its whole subtree from the table.
func (ix *index) remove(id string) {
	node, ok := ix.nodes[id]
	if !ok {
		return
	}
	stack := []*Node{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		delete(ix.nodes, n.ID)
		delete(ix.parents, n.ID)
		stack = append(stack, n.Children...)
	}
}

func removeNode(nodes []*Node, target *Node) []*Node {
	for i, n := range nodes {
		if n == target {
			return append(nodes[:i], nodes[i+1:]...)
		}
	}
	return nodes
}
