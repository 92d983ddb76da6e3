package cgraph

import (
	"fmt"

	"github.com/katalvlaran/lvlath/core"
)

// Link is one channel-mediated communication edge: some edge of From
// sends on Channel and some edge of To receives on it.
type Link struct {
	From    string
	Channel string
	To      string
}

// Graph is the communication graph of a declaration set. Nodes are
// template names, edges are Links. The graph is immutable after Build.
//
// The backing store is a directed multigraph; parallel links arise
// when several edges of the same templates use the same channel, and a
// template synchronizing with itself yields a self-loop.
type Graph struct {
	templates []string
	links     []Link

	g        *core.Graph
	channels map[string]string
}

// Build constructs the communication graph. Every (sending use,
// receiving use) pair on a channel contributes one Link, so a
// template pair communicating over two distinct sender edges shows up
// twice. Declarations are validated first; a defect fails the build
// with MalformedDeclarationError and no partial graph.
func Build(decls []TemplateDecl) (*Graph, error) {
	if err := validate(decls); err != nil {
		return nil, err
	}

	// Receivers per channel, one entry per receiving use, in
	// declaration order. Link order then follows the senders'
	// declaration order, which keeps Build deterministic.
	receivers := map[string][]string{}
	for _, d := range decls {
		for _, u := range d.Uses {
			if u.Direction == Receive {
				receivers[u.Channel] = append(receivers[u.Channel], d.Name)
			}
		}
	}

	templates := make([]string, len(decls))
	for i, d := range decls {
		templates[i] = d.Name
	}

	var links []Link
	for _, d := range decls {
		for _, u := range d.Uses {
			if u.Direction != Send {
				continue
			}
			for _, to := range receivers[u.Channel] {
				links = append(links, Link{From: d.Name, Channel: u.Channel, To: to})
			}
		}
	}

	return assemble(templates, links)
}

func assemble(templates []string, links []Link) (*Graph, error) {
	g, err := core.NewGraph(core.WithDirected(true), core.WithMultiEdges(), core.WithLoops())
	if err != nil {
		return nil, fmt.Errorf("cgraph: Creating backing graph: %w", err)
	}
	for _, t := range templates {
		if err := g.AddVertex(t); err != nil {
			return nil, fmt.Errorf("cgraph: Adding template %q: %w", t, err)
		}
	}
	channels := make(map[string]string, len(links))
	for _, l := range links {
		id, err := g.AddEdge(l.From, l.To, 0)
		if err != nil {
			return nil, fmt.Errorf("cgraph: Adding link %s--%s-->%s: %w", l.From, l.Channel, l.To, err)
		}
		channels[id] = l.Channel
	}
	return &Graph{templates: templates, links: links, g: g, channels: channels}, nil
}

// Templates returns the node names in declaration order.
func (cg *Graph) Templates() []string {
	out := make([]string, len(cg.templates))
	copy(out, cg.templates)
	return out
}

// Links returns the communication edges in build order. The result is
// a copy.
func (cg *Graph) Links() []Link {
	out := make([]Link, len(cg.links))
	copy(out, cg.links)
	return out
}

// Core exposes the backing graph for structural queries and graph
// algorithms. Treat it as read-only; mutating it desynchronizes the
// channel mapping.
func (cg *Graph) Core() *core.Graph {
	return cg.g
}

// Channel returns the channel carried by a backing-graph edge.
func (cg *Graph) Channel(edgeID string) (string, bool) {
	ch, ok := cg.channels[edgeID]
	return ch, ok
}

// Beautify returns a graph with parallel links merged: of all links
// sharing source, channel and destination only the first is kept.
// A presentation transform, node set and link semantics are unchanged.
func (cg *Graph) Beautify() *Graph {
	seen := make(map[Link]bool, len(cg.links))
	var merged []Link
	for _, l := range cg.links {
		if seen[l] {
			continue
		}
		seen[l] = true
		merged = append(merged, l)
	}
	out, err := assemble(cg.Templates(), merged)
	if err != nil {
		// assemble only fails on invalid names, which Build rejected.
		panic(fmt.Sprintf("cgraph: Rebuilding beautified graph: %v", err))
	}
	return out
}
