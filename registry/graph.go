package registry

import (
	"fmt"

	"github.com/seuros/gopher-packstream/packstream"
)

// Structure signatures for graph record types.
const (
	NodeSignature                byte = 0x4E
	RelationshipSignature        byte = 0x52
	UnboundRelationshipSignature byte = 0x72
	PathSignature                byte = 0x50
)

// Node represents a labeled graph node with properties.
type Node struct {
	ID         packstream.I64
	Labels     []string
	Properties map[string]interface{}
	ElementID  string
}

// Relationship represents a directed, typed edge between two nodes.
type Relationship struct {
	ID         packstream.I64
	StartID    packstream.I64
	EndID      packstream.I64
	Type       string
	Properties map[string]interface{}
	ElementID  string
}

// UnboundRelationship is a Relationship with its endpoints elided,
// carried inside a Path's relationship list.
type UnboundRelationship struct {
	ID         packstream.I64
	Type       string
	Properties map[string]interface{}
	ElementID  string
}

// Path is an alternating sequence of nodes and unbound relationships
// describing a walk through the graph.
type Path struct {
	Nodes         []Node
	Relationships []UnboundRelationship
	Sequence      []int64
}

// RegisterGraphTypes adds Node, Relationship, UnboundRelationship, and
// Path to r.
func RegisterGraphTypes(r *Registry) {
	r.Register(NodeSignature, hydrateNode, dehydrateNode)
	r.Register(RelationshipSignature, hydrateRelationship, dehydrateRelationship)
	r.Register(UnboundRelationshipSignature, hydrateUnboundRelationship, dehydrateUnboundRelationship)
	r.Register(PathSignature, hydratePath, dehydratePath)
}

func asProperties(v interface{}) map[string]interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		return m
	case *packstream.OrderedMap:
		out := make(map[string]interface{}, m.Len())
		m.Range(func(k string, val interface{}) bool {
			out[k] = val
			return true
		})
		return out
	default:
		return map[string]interface{}{}
	}
}

func asI64(v interface{}) packstream.I64 {
	if i, ok := v.(packstream.I64); ok {
		return i
	}
	return 0
}

func asStringSlice(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func hydrateNode(fields []interface{}) (interface{}, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("node structure needs at least 3 fields, got %d", len(fields))
	}
	n := Node{
		ID:         asI64(fields[0]),
		Labels:     asStringSlice(fields[1]),
		Properties: asProperties(fields[2]),
	}
	if len(fields) >= 4 {
		if s, ok := fields[3].(string); ok {
			n.ElementID = s
		}
	}
	return n, nil
}

func dehydrateNode(v interface{}) ([]interface{}, bool) {
	n, ok := v.(Node)
	if !ok {
		return nil, false
	}
	labels := make([]interface{}, len(n.Labels))
	for i, l := range n.Labels {
		labels[i] = l
	}
	fields := []interface{}{n.ID, labels, n.Properties}
	if n.ElementID != "" {
		fields = append(fields, n.ElementID)
	}
	return fields, true
}

func hydrateRelationship(fields []interface{}) (interface{}, error) {
	if len(fields) < 5 {
		return nil, fmt.Errorf("relationship structure needs at least 5 fields, got %d", len(fields))
	}
	typ, _ := fields[3].(string)
	rel := Relationship{
		ID:         asI64(fields[0]),
		StartID:    asI64(fields[1]),
		EndID:      asI64(fields[2]),
		Type:       typ,
		Properties: asProperties(fields[4]),
	}
	if len(fields) >= 6 {
		if s, ok := fields[5].(string); ok {
			rel.ElementID = s
		}
	}
	return rel, nil
}

func dehydrateRelationship(v interface{}) ([]interface{}, bool) {
	rel, ok := v.(Relationship)
	if !ok {
		return nil, false
	}
	fields := []interface{}{rel.ID, rel.StartID, rel.EndID, rel.Type, rel.Properties}
	if rel.ElementID != "" {
		fields = append(fields, rel.ElementID)
	}
	return fields, true
}

func hydrateUnboundRelationship(fields []interface{}) (interface{}, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("unbound relationship structure needs at least 3 fields, got %d", len(fields))
	}
	typ, _ := fields[1].(string)
	rel := UnboundRelationship{
		ID:         asI64(fields[0]),
		Type:       typ,
		Properties: asProperties(fields[2]),
	}
	if len(fields) >= 4 {
		if s, ok := fields[3].(string); ok {
			rel.ElementID = s
		}
	}
	return rel, nil
}

func dehydrateUnboundRelationship(v interface{}) ([]interface{}, bool) {
	rel, ok := v.(UnboundRelationship)
	if !ok {
		return nil, false
	}
	fields := []interface{}{rel.ID, rel.Type, rel.Properties}
	if rel.ElementID != "" {
		fields = append(fields, rel.ElementID)
	}
	return fields, true
}

func hydratePath(fields []interface{}) (interface{}, error) {
	if len(fields) != 3 {
		return nil, fmt.Errorf("path structure needs exactly 3 fields, got %d", len(fields))
	}
	rawNodes, _ := fields[0].([]interface{})
	rawRels, _ := fields[1].([]interface{})
	rawSeq, _ := fields[2].([]interface{})

	nodes := make([]Node, 0, len(rawNodes))
	for _, rn := range rawNodes {
		n, ok := rn.(Node)
		if !ok {
			return nil, fmt.Errorf("path node entry is %T, want registry.Node", rn)
		}
		nodes = append(nodes, n)
	}

	rels := make([]UnboundRelationship, 0, len(rawRels))
	for _, rr := range rawRels {
		rel, ok := rr.(UnboundRelationship)
		if !ok {
			return nil, fmt.Errorf("path relationship entry is %T, want registry.UnboundRelationship", rr)
		}
		rels = append(rels, rel)
	}

	seq := make([]int64, 0, len(rawSeq))
	for _, rs := range rawSeq {
		i, ok := rs.(packstream.I64)
		if !ok {
			return nil, fmt.Errorf("path sequence entry is %T, want packstream.I64", rs)
		}
		seq = append(seq, i.Int64())
	}

	return Path{Nodes: nodes, Relationships: rels, Sequence: seq}, nil
}

func dehydratePath(v interface{}) ([]interface{}, bool) {
	p, ok := v.(Path)
	if !ok {
		return nil, false
	}
	nodes := make([]interface{}, len(p.Nodes))
	for i, n := range p.Nodes {
		nodes[i] = n
	}
	rels := make([]interface{}, len(p.Relationships))
	for i, r := range p.Relationships {
		rels[i] = r
	}
	seq := make([]interface{}, len(p.Sequence))
	for i, s := range p.Sequence {
		seq[i] = packstream.I64(s)
	}
	return []interface{}{nodes, rels, seq}, true
}
