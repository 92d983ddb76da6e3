package exclusion

import (
	"fmt"
	"strconv"
	"strings"

	"uppat/pattern"
)

// Trie is a prefix tree over action labels. Inserted patterns end in
// accepting nodes; Accepts matches whole sequences only, so excluding
// a pattern never excludes its extensions.
type Trie struct {
	root *trieNode
}

type trieNode struct {
	label    string
	accept   bool
	children []*trieNode
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{root: &trieNode{}}
}

// Returns the first child with the provided label, or nil.
func (n *trieNode) child(label string) *trieNode {
	for _, c := range n.children {
		if c.label == label {
			return c
		}
	}
	return nil
}

// Insert adds a pattern to the trie and marks its final node
// accepting. It reports whether the pattern was not accepted before.
func (t *Trie) Insert(p pattern.Pattern) bool {
	node := t.root
	for _, label := range p {
		next := node.child(label)
		if next == nil {
			next = &trieNode{label: label}
			node.children = append(node.children, next)
		}
		node = next
	}
	if node.accept {
		return false
	}
	node.accept = true
	return true
}

// Accepts reports whether the whole sequence p ends in an accepting
// node. A proper prefix or extension of an inserted pattern does not
// match.
func (t *Trie) Accepts(p pattern.Pattern) bool {
	node := t.root
	for _, label := range p {
		if node = node.child(label); node == nil {
			return false
		}
	}
	return node.accept
}

// Len returns the total number of nodes, the root included.
func (t *Trie) Len() int {
	return t.root.count()
}

func (n *trieNode) count() int {
	total := 1
	for _, c := range n.children {
		total += c.count()
	}
	return total
}

// Empty reports whether the trie accepts nothing.
func (t *Trie) Empty() bool {
	return len(t.root.children) == 0 && !t.root.accept
}

// Encode serializes the trie for embedding in a query fragment.
// Nodes are numbered breadth-first from the root (id 0); each node
// with children contributes one "id:label>child,..." entry, a "*"
// suffix on a child id marks that child accepting. The accepting,
// childless root of an empty-pattern exclusion encodes as "0*".
func (t *Trie) Encode() string {
	ids := map[*trieNode]int{t.root: 0}
	queue := []*trieNode{t.root}
	order := []*trieNode{}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)
		for _, c := range node.children {
			ids[c] = len(ids)
			queue = append(queue, c)
		}
	}

	var entries []string
	for _, node := range order {
		if len(node.children) == 0 {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%d", ids[node])
		if node == t.root && node.accept {
			b.WriteByte('*')
		}
		b.WriteByte(':')
		for i, c := range node.children {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%s>%d", c.label, ids[c])
			if c.accept {
				b.WriteByte('*')
			}
		}
		entries = append(entries, b.String())
	}
	if len(entries) == 0 && t.root.accept {
		return "0*"
	}
	return strings.Join(entries, ";")
}

// DecodeTrie reads the serialization produced by Encode.
func DecodeTrie(s string) (*Trie, error) {
	t := NewTrie()
	s = strings.TrimSpace(s)
	if s == "" {
		return t, nil
	}

	nodes := map[int]*trieNode{0: t.root}
	for _, entry := range strings.Split(s, ";") {
		ref, edges, hasEdges := strings.Cut(entry, ":")
		id, accept, err := parseNodeRef(ref)
		if err != nil {
			return nil, err
		}
		node, ok := nodes[id]
		if !ok {
			return nil, fragmentErr("trie entry refers to undefined node %d", id)
		}
		if accept {
			node.accept = true
		}
		if !hasEdges {
			if id != 0 || !accept {
				return nil, fragmentErr("trie entry %q has no edges", entry)
			}
			continue
		}
		for _, edge := range strings.Split(edges, ",") {
			label, childRef, ok := strings.Cut(edge, ">")
			if !ok || label == "" {
				return nil, fragmentErr("bad trie edge %q", edge)
			}
			childID, childAccept, err := parseNodeRef(childRef)
			if err != nil {
				return nil, err
			}
			if _, exists := nodes[childID]; exists {
				return nil, fragmentErr("trie node %d is defined twice", childID)
			}
			if node.child(label) != nil {
				return nil, fragmentErr("trie node %d has two edges labelled %q", id, label)
			}
			child := &trieNode{label: label, accept: childAccept}
			node.children = append(node.children, child)
			nodes[childID] = child
		}
	}
	return t, nil
}

func parseNodeRef(ref string) (int, bool, error) {
	accept := strings.HasSuffix(ref, "*")
	id, err := strconv.Atoi(strings.TrimSuffix(ref, "*"))
	if err != nil || id < 0 {
		return 0, false, fragmentErr("bad trie node reference %q", ref)
	}
	return id, accept, nil
}

// String renders the trie one node per line, indented by depth.
// Accepting nodes carry a "*" suffix. Intended for debugging output.
func (t *Trie) String() string {
	var b strings.Builder
	t.root.dump(&b, 0)
	return b.String()
}

func (n *trieNode) dump(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("-")
	}
	label := n.label
	if depth == 0 {
		label = "."
	}
	b.WriteString(label)
	if n.accept {
		b.WriteString("*")
	}
	b.WriteString("\n")
	for _, c := range n.children {
		c.dump(b, depth+1)
	}
}
