package cgraph

import (
	"fmt"
	"strings"
)

// Render writes the graph as a textual diagram in mermaid flowchart
// syntax: a "graph TD" header, one node line per template in
// declaration order, then one "Source--channel-->Destination" line
// per link in build order. Templates without links still get their
// node line.
func (cg *Graph) Render() string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	for _, t := range cg.templates {
		fmt.Fprintf(&b, "  %s\n", t)
	}
	for _, l := range cg.links {
		fmt.Fprintf(&b, "  %s--%s-->%s\n", l.From, l.Channel, l.To)
	}
	return b.String()
}
