package roadcanvas

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// WriteNodesCSV writes the node table with columns
// id,x,y,latitude,longitude,osm_id.
func (n *RoadNetwork) WriteNodesCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "x", "y", "latitude", "longitude", "osm_id"}); err != nil {
		return err
	}
	for _, node := range n.Nodes {
		record := []string{
			strconv.Itoa(node.ID),
			formatFloat(node.X, 2),
			formatFloat(node.Y, 2),
			formatFloat(node.Lat, 6),
			formatFloat(node.Lon, 6),
			strconv.FormatInt(node.OSMID, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEdgesCSV writes the directed edge table with columns
// from_id,to_id,distance_m. Every undirected connection appears as two rows.
func (n *RoadNetwork) WriteEdgesCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"from_id", "to_id", "distance_m"}); err != nil {
		return err
	}
	for _, edge := range n.Edges {
		record := []string{
			strconv.Itoa(edge.From),
			strconv.Itoa(edge.To),
			formatFloat(edge.DistanceMeters, 2),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// GeoJSON returns the network's undirected connections as a
// FeatureCollection of LineStrings in geographic coordinates, with from_id,
// to_id, and distance_m properties.
func (n *RoadNetwork) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, edge := range n.Connections() {
		from, _ := n.NodeByID(edge.From)
		to, _ := n.NodeByID(edge.To)
		feature := geojson.NewFeature(orb.LineString{
			{from.Lon, from.Lat},
			{to.Lon, to.Lat},
		})
		feature.Properties["from_id"] = edge.From
		feature.Properties["to_id"] = edge.To
		feature.Properties["distance_m"] = edge.DistanceMeters
		fc.Append(feature)
	}
	return fc
}

// WriteGeoJSON writes the network's connections as GeoJSON.
func (n *RoadNetwork) WriteGeoJSON(w io.Writer) error {
	data, err := n.GeoJSON().MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
