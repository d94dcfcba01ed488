package registry

import (
	"fmt"

	"github.com/seuros/gopher-packstream/packstream"
)

// Structure signatures for spatial point types.
const (
	Point2DSignature byte = 0x58
	Point3DSignature byte = 0x59
)

// Point2D is a planar point tagged with a spatial reference system
// identifier (SRID), e.g. 7203 for Cartesian or 4326 for WGS-84.
type Point2D struct {
	SRID int64
	X    float64
	Y    float64
}

// Point3D is Point2D extended with a Z coordinate.
type Point3D struct {
	SRID int64
	X    float64
	Y    float64
	Z    float64
}

// RegisterSpatialTypes adds Point2D and Point3D to r.
func RegisterSpatialTypes(r *Registry) {
	r.Register(Point2DSignature, hydratePoint2D, dehydratePoint2D)
	r.Register(Point3DSignature, hydratePoint3D, dehydratePoint3D)
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case packstream.I64:
		return n.Int64(), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func hydratePoint2D(fields []interface{}) (interface{}, error) {
	if len(fields) != 3 {
		return nil, fmt.Errorf("point2d structure needs exactly 3 fields, got %d", len(fields))
	}
	srid, ok := asInt64(fields[0])
	if !ok {
		return nil, fmt.Errorf("point2d srid is %T, want integer", fields[0])
	}
	x, ok := asFloat64(fields[1])
	if !ok {
		return nil, fmt.Errorf("point2d x is %T, want float64", fields[1])
	}
	y, ok := asFloat64(fields[2])
	if !ok {
		return nil, fmt.Errorf("point2d y is %T, want float64", fields[2])
	}
	return Point2D{SRID: srid, X: x, Y: y}, nil
}

func dehydratePoint2D(v interface{}) ([]interface{}, bool) {
	p, ok := v.(Point2D)
	if !ok {
		return nil, false
	}
	return []interface{}{packstream.NewI64(p.SRID), p.X, p.Y}, true
}

func hydratePoint3D(fields []interface{}) (interface{}, error) {
	if len(fields) != 4 {
		return nil, fmt.Errorf("point3d structure needs exactly 4 fields, got %d", len(fields))
	}
	srid, ok := asInt64(fields[0])
	if !ok {
		return nil, fmt.Errorf("point3d srid is %T, want integer", fields[0])
	}
	x, ok := asFloat64(fields[1])
	if !ok {
		return nil, fmt.Errorf("point3d x is %T, want float64", fields[1])
	}
	y, ok := asFloat64(fields[2])
	if !ok {
		return nil, fmt.Errorf("point3d y is %T, want float64", fields[2])
	}
	z, ok := asFloat64(fields[3])
	if !ok {
		return nil, fmt.Errorf("point3d z is %T, want float64", fields[3])
	}
	return Point3D{SRID: srid, X: x, Y: y, Z: z}, nil
}

func dehydratePoint3D(v interface{}) ([]interface{}, bool) {
	p, ok := v.(Point3D)
	if !ok {
		return nil, false
	}
	return []interface{}{packstream.NewI64(p.SRID), p.X, p.Y, p.Z}, true
}
