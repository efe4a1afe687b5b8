// Package geo maps sector-plane positions onto EPSG:3857 points so boarding
// rows can be stored and queried with ordinary GIS tooling.
//
// The sector plane is flat and measured in simulation units. A Projector pins
// the plane's origin to a WGS84 anchor and scales units to metres; since 3857 is
// itself metric the mapping is a translation plus a scale.
package geo

import (
	"errors"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/OCAP2/boarding/pkg/core"
)

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Projector converts between the sector plane and EPSG:3857.
type Projector struct {
	originX, originY float64
	scale            float64
}

// NewProjector anchors the plane origin at lon/lat (EPSG:4326). Scale is metres
// per simulation unit; values <= 0 mean 1.
func NewProjector(anchorLon, anchorLat, scale float64) *Projector {
	if scale <= 0 {
		scale = 1
	}
	x, y, _ := wgs84.EPSG().Transform(4326, 3857)(anchorLon, anchorLat, 0)
	return &Projector{originX: x, originY: y, scale: scale}
}

// Point projects a plane position to a 3857 point.
func (p *Projector) Point(v core.Vec2) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY: geom.XY{
			X: p.originX + v.X*p.scale,
			Y: p.originY + v.Y*p.scale,
		},
	})
}

// Vec recovers the plane position of a 3857 point.
func (p *Projector) Vec(pt geom.Point) (core.Vec2, error) {
	c, ok := pt.Coordinates()
	if !ok {
		return core.Vec2{}, ErrInvalidCoordinates
	}
	return core.Vec2{
		X: (c.X - p.originX) / p.scale,
		Y: (c.Y - p.originY) / p.scale,
	}, nil
}

// LonLat returns the WGS84 longitude and latitude of a plane position.
func (p *Projector) LonLat(v core.Vec2) (lon, lat float64) {
	lon, lat, _ = wgs84.EPSG().Transform(3857, 4326)(
		p.originX+v.X*p.scale,
		p.originY+v.Y*p.scale,
		0,
	)
	return lon, lat
}
