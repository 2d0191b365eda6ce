package conceptmap

// Edge is a connection whose endpoints were both found among the displayed nodes.
type Edge struct {
	Connection
	FromNode ConceptNode `json:"from_node"`
	ToNode   ConceptNode `json:"to_node"`
}

// ResolveEdges keeps the connections whose endpoints exist in nodes within the
// connection's own note. Connections naming unknown concepts are dropped
// silently; in expanded mode this also drops every other note's connections.
func ResolveEdges(connections []Connection, nodes []ConceptNode) []Edge {
	index := make(map[NodeKey]ConceptNode, len(nodes))
	for _, n := range nodes {
		index[n.Key()] = n
	}

	edges := make([]Edge, 0, len(connections))
	for _, c := range connections {
		from, ok := index[c.FromKey()]
		if !ok {
			continue
		}
		to, ok := index[c.ToKey()]
		if !ok {
			continue
		}
		edges = append(edges, Edge{Connection: c, FromNode: from, ToNode: to})
	}
	return edges
}
