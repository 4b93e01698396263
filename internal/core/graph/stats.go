package graph

// Statistics summarises the graph, treating edges as undirected for density
// and connectivity.
type Statistics struct {
	NodeCount  int            `json:"node_count"`
	EdgeCount  int            `json:"edge_count"`
	NodeTypes  map[string]int `json:"node_types"`
	EdgeTypes  map[string]int `json:"edge_types"`
	Inferred   int            `json:"inferred_edges"`
	Density    float64        `json:"density"`
	Connected  bool           `json:"connected"`
	Components int            `json:"components"`
}

func (g *Graph) Statistics() Statistics {
	st := Statistics{
		NodeCount: len(g.nodes),
		EdgeCount: len(g.edges),
		NodeTypes: make(map[string]int),
		EdgeTypes: make(map[string]int),
	}
	for _, n := range g.nodes {
		st.NodeTypes[n.Type]++
	}
	for _, e := range g.edges {
		st.EdgeTypes[e.Type]++
		if e.Inferred {
			st.Inferred++
		}
	}
	if n := float64(st.NodeCount); n > 1 {
		st.Density = float64(st.EdgeCount) / (n * (n - 1) / 2)
	}
	st.Components = len(g.Components())
	st.Connected = st.Components == 1
	return st
}

// Components returns the connected components as lists of node ids, each in
// insertion order, ordered by their first node.
func (g *Graph) Components() [][]string {
	visited := make(map[string]bool, len(g.nodes))
	var comps [][]string
	for _, start := range g.nodeOrder {
		if visited[start] {
			continue
		}
		visited[start] = true
		queue := []string{start}
		member := map[string]bool{start: true}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nb := range g.Neighbors(cur) {
				if !visited[nb] {
					visited[nb] = true
					member[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		comp := make([]string, 0, len(member))
		for _, id := range g.nodeOrder {
			if member[id] {
				comp = append(comp, id)
			}
		}
		comps = append(comps, comp)
	}
	return comps
}
