// internal/model/core/primitive.go
package core

import "encoding/json"

// Cartesian is a position handed to the renderer as-is.
// When Is3D is false the position has two components and Z is zero.
type Cartesian struct {
	X    float64
	Y    float64
	Z    float64
	Is3D bool
}

// MarshalJSON renders [x,y] or [x,y,z].
func (c Cartesian) MarshalJSON() ([]byte, error) {
	if c.Is3D {
		return json.Marshal([]float64{c.X, c.Y, c.Z})
	}
	return json.Marshal([]float64{c.X, c.Y})
}

// UnmarshalJSON accepts [x,y] or [x,y,z].
func (c *Cartesian) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Cartesian{}
	if len(v) > 0 {
		c.X = v[0]
	}
	if len(v) > 1 {
		c.Y = v[1]
	}
	if len(v) > 2 {
		c.Z = v[2]
		c.Is3D = true
	}
	return nil
}

// HeightReference tells the renderer how to place a primitive vertically
type HeightReference string

const (
	HeightReferenceNone          HeightReference = "NONE"
	HeightReferenceClampToGround HeightReference = "CLAMP_TO_GROUND"
)

// ArcType controls how the renderer interpolates between line endpoints
type ArcType string

const ArcTypeNone ArcType = "NONE"

// PrimitiveKind identifies the concrete primitive type
type PrimitiveKind string

const (
	KindPolygon   PrimitiveKind = "polygon"
	KindPoint     PrimitiveKind = "point"
	KindLine      PrimitiveKind = "line"
	KindBillboard PrimitiveKind = "billboard"
)

// Primitive is any renderer-facing element produced by the converter
type Primitive interface {
	Kind() PrimitiveKind
}

// PolygonPrimitive is a filled ring. Holes is always empty.
type PolygonPrimitive struct {
	Name      string        `json:"name,omitempty"`
	Positions []Cartesian   `json:"positions"`
	Holes     [][]Cartesian `json:"holes"`
	Fill      Color         `json:"fill"`
}

func (PolygonPrimitive) Kind() PrimitiveKind { return KindPolygon }

// PointStyle is the resolved marker styling
type PointStyle struct {
	Color           Color           `json:"color"`
	PixelSize       float64         `json:"pixelSize"`
	OutlineColor    Color           `json:"outlineColor"`
	OutlineWidth    float64         `json:"outlineWidth"`
	HeightReference HeightReference `json:"heightReference"`
}

// LabelBackground is present only when the label shows a background
type LabelBackground struct {
	Color   Color      `json:"color"`
	Padding [2]float64 `json:"padding"`
}

// LabelStyle is the resolved label co-located with a marker
type LabelStyle struct {
	Text             string           `json:"text"`
	Font             string           `json:"font"`
	FillColor        Color            `json:"fillColor"`
	HeightReference  HeightReference  `json:"heightReference"`
	HorizontalOrigin string           `json:"horizontalOrigin"`
	VerticalOrigin   string           `json:"verticalOrigin"`
	Background       *LabelBackground `json:"background,omitempty"`
	DepthTestOff     bool             `json:"disableDepthTest"`
}

// PointPrimitive is a marker plus its label, sharing one position
type PointPrimitive struct {
	Position Cartesian  `json:"position"`
	Point    PointStyle `json:"point"`
	Label    LabelStyle `json:"label"`
}

func (PointPrimitive) Kind() PrimitiveKind { return KindPoint }

// LineMaterial describes how a line is painted
type LineMaterial struct {
	Type  string `json:"type"`
	Color Color  `json:"color"`
}

// LineMaterialArrow is the directional arrow material used for trajectories
const LineMaterialArrow = "PolylineArrow"

// LinePrimitive is a straight two-point segment
type LinePrimitive struct {
	Name          string       `json:"name"`
	Positions     [2]Cartesian `json:"positions"`
	Width         float64      `json:"width"`
	ArcType       ArcType      `json:"arcType"`
	ClampToGround bool         `json:"clampToGround"`
	Material      LineMaterial `json:"material"`
}

func (LinePrimitive) Kind() PrimitiveKind { return KindLine }

// BillboardPrimitive is an image icon with a label
type BillboardPrimitive struct {
	Position        Cartesian       `json:"position"`
	Image           string          `json:"image"`
	HeightReference HeightReference `json:"heightReference"`
	Label           LabelStyle      `json:"label"`
}

func (BillboardPrimitive) Kind() PrimitiveKind { return KindBillboard }

// CesiumDeployment is a converted deployment
type CesiumDeployment struct {
	Name           string           `json:"name"`
	PhysicalModels []PointPrimitive `json:"physicalModels"`
}

// CesiumAttack is a converted attack. Every trajectory starts at the target.
type CesiumAttack struct {
	Name         string          `json:"name"`
	Target       PointPrimitive  `json:"target"`
	Trajectories []LinePrimitive `json:"trajectories"`
}

// Scene is the full converted output of a MapModel
type Scene struct {
	Assets      []PolygonPrimitive   `json:"assets"`
	Deployments []CesiumDeployment   `json:"deployments"`
	Attacks     []CesiumAttack       `json:"attacks"`
	Overlays    []BillboardPrimitive `json:"overlays,omitempty"`
}
