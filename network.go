package roadcanvas

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000

// A Node is a road-network intersection or way point, re-keyed to a
// sequential ID and remapped to canvas coordinates. The source node ID is
// kept for traceability.
type Node struct {
	ID    int
	X     float64
	Y     float64
	Lat   float64
	Lon   float64
	OSMID int64
}

// An Edge is a directed road segment between two node IDs.
type Edge struct {
	From           int
	To             int
	DistanceMeters float64
}

// A RoadNetwork is the tabular form of a fetched road graph: sequentially
// keyed nodes with canvas coordinates, and directed edges. Every undirected
// connection appears as two directed edges.
type RoadNetwork struct {
	Box    BoundingBox
	Canvas Canvas
	Nodes  []Node
	Edges  []Edge
}

// NetworkLimits caps the size of a built network. Zero values mean no limit
// on that axis.
type NetworkLimits struct {
	MaxNodes int
	MaxEdges int
}

// BuildNetwork converts raw way and node elements into a RoadNetwork.
// Nodes are assigned sequential IDs from 1 in order of first appearance in a
// way; nodes referenced by no way are dropped. Consecutive way nodes become
// one undirected connection, deduplicated across ways, emitted as two
// directed edges with the great-circle distance in meters rounded to two
// decimals. Latitudes and longitudes are rounded to six decimals.
func BuildNetwork(box BoundingBox, canvas Canvas, osmNodes []OSMNode, ways []OSMWay, limits NetworkLimits) (*RoadNetwork, error) {
	coords := make(map[int64]OSMNode, len(osmNodes))
	for _, n := range osmNodes {
		coords[n.ID] = n
	}

	network := &RoadNetwork{
		Box:    box,
		Canvas: canvas,
	}
	ids := make(map[int64]int)
	seen := make(map[[2]int]struct{})

	nodeID := func(osmID int64) (int, bool) {
		if id, ok := ids[osmID]; ok {
			return id, true
		}
		n, ok := coords[osmID]
		if !ok {
			return 0, false
		}
		id := len(network.Nodes) + 1
		ids[osmID] = id
		x, y := canvas.Normalize(n.Lat, n.Lon, box)
		network.Nodes = append(network.Nodes, Node{
			ID:    id,
			X:     x,
			Y:     y,
			Lat:   round6(n.Lat),
			Lon:   round6(n.Lon),
			OSMID: osmID,
		})
		return id, true
	}

	for _, way := range ways {
		for i := 0; i+1 < len(way.Nodes); i++ {
			fromOSM, toOSM := way.Nodes[i], way.Nodes[i+1]
			from, ok := nodeID(fromOSM)
			if !ok {
				continue
			}
			to, ok := nodeID(toOSM)
			if !ok {
				continue
			}
			if from == to {
				continue
			}

			key := [2]int{from, to}
			if to < from {
				key = [2]int{to, from}
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			distance := round2(haversineMeters(coords[fromOSM].Lat, coords[fromOSM].Lon,
				coords[toOSM].Lat, coords[toOSM].Lon))
			network.Edges = append(network.Edges,
				Edge{From: from, To: to, DistanceMeters: distance},
				Edge{From: to, To: from, DistanceMeters: distance},
			)
		}
	}

	if limits.MaxNodes > 0 && len(network.Nodes) > limits.MaxNodes {
		return nil, fmt.Errorf("%w: %d nodes, limit %d",
			ErrNetworkTooLarge, len(network.Nodes), limits.MaxNodes)
	}
	if limits.MaxEdges > 0 && len(network.Edges) > limits.MaxEdges {
		return nil, fmt.Errorf("%w: %d edges, limit %d",
			ErrNetworkTooLarge, len(network.Edges), limits.MaxEdges)
	}
	return network, nil
}

// Connections returns the undirected connections of n: each pair of directed
// edges reduced to the edge with From < To.
func (n *RoadNetwork) Connections() []Edge {
	connections := make([]Edge, 0, len(n.Edges)/2)
	for _, edge := range n.Edges {
		if edge.From < edge.To {
			connections = append(connections, edge)
		}
	}
	return connections
}

// NodeByID returns the node with the given sequential ID.
func (n *RoadNetwork) NodeByID(id int) (Node, bool) {
	if id < 1 || id > len(n.Nodes) {
		return Node{}, false
	}
	return n.Nodes[id-1], true
}

// haversineMeters returns the great-circle distance between two points.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := phi2 - phi1
	dLambda := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
