package entities

import (
	"github.com/OCAP2/globe/internal/geo"
	"github.com/OCAP2/globe/internal/model/core"
)

// BuildPoint converts a point entity into a marker with a co-located label.
func (c Converter) BuildPoint(p core.PointEntity) (core.PointPrimitive, error) {
	return c.buildPoint(p, "")
}

// BuildLine converts one trajectory leg into a straight arrow line from start.
func (c Converter) BuildLine(start core.Cartesian, leg core.TargetTrajectory) (core.LinePrimitive, error) {
	return c.buildLine(start, leg, "")
}

// BuildPolygon converts an asset ring into a filled polygon.
// The asset's declared color, borderColor and geometry are not applied;
// the fill always comes from the style.
func (c Converter) BuildPolygon(a core.AssetForCesium) (core.PolygonPrimitive, error) {
	return c.buildPolygon(a, "")
}

// BuildBillboard converts a static overlay into an icon clamped to the ground.
func (c Converter) BuildBillboard(o core.Overlay) core.BillboardPrimitive {
	return core.BillboardPrimitive{
		Position:        geo.Normalize(o.Position),
		Image:           o.Image,
		HeightReference: core.HeightReferenceClampToGround,
		Label: core.LabelStyle{
			Text:             o.Name,
			Font:             c.style.NameFont,
			FillColor:        c.style.LabelFillColor,
			HeightReference:  core.HeightReferenceClampToGround,
			HorizontalOrigin: c.style.LabelHorizontalPos,
			VerticalOrigin:   c.style.LabelVerticalPos,
		},
	}
}

func (c Converter) buildPoint(p core.PointEntity, path string) (core.PointPrimitive, error) {
	if p.Location == nil {
		return core.PointPrimitive{}, missing(join(path, "location"))
	}

	heightRef := core.HeightReferenceNone
	if p.OnGround {
		heightRef = core.HeightReferenceClampToGround
	}

	point := core.PointStyle{
		Color:           colorOr(p.Color, c.style.MarkerColor),
		PixelSize:       floatOr(p.PixelSize, c.style.PixelSize),
		OutlineColor:    colorOr(p.OutlineColor, c.style.OutlineColor),
		OutlineWidth:    floatOr(p.OutlineWidth, c.style.OutlineWidth),
		HeightReference: heightRef,
	}

	label := core.LabelStyle{
		Text:             p.Name,
		Font:             stringOr(p.NameFont, c.style.NameFont),
		FillColor:        colorOr(p.NameColor, c.style.LabelFillColor),
		HeightReference:  heightRef,
		HorizontalOrigin: c.style.LabelHorizontalPos,
		VerticalOrigin:   c.style.LabelVerticalPos,
		DepthTestOff:     true,
	}
	if p.ShowNameBackground {
		label.Background = &core.LabelBackground{
			Color:   c.style.LabelBackground,
			Padding: c.style.LabelPadding,
		}
	}

	return core.PointPrimitive{
		Position: geo.Normalize(*p.Location),
		Point:    point,
		Label:    label,
	}, nil
}

func (c Converter) buildLine(start core.Cartesian, leg core.TargetTrajectory, path string) (core.LinePrimitive, error) {
	if leg.EndPoint == nil {
		return core.LinePrimitive{}, missing(join(path, "endPoint"))
	}

	return core.LinePrimitive{
		Name:          stringOr(leg.Name, c.style.TrajectoryName),
		Positions:     [2]core.Cartesian{start, geo.Normalize(*leg.EndPoint)},
		Width:         floatOr(leg.LineWidth, c.style.LineWidth),
		ArcType:       core.ArcTypeNone,
		ClampToGround: false,
		Material: core.LineMaterial{
			Type:  core.LineMaterialArrow,
			Color: colorOr(leg.LineColor, c.style.LineColor),
		},
	}, nil
}

func (c Converter) buildPolygon(a core.AssetForCesium, path string) (core.PolygonPrimitive, error) {
	if a.Coordinates == nil {
		return core.PolygonPrimitive{}, missing(join(path, "coordinates"))
	}

	positions := make([]core.Cartesian, 0, len(a.Coordinates))
	for _, coord := range a.Coordinates {
		positions = append(positions, geo.Normalize(coord))
	}

	return core.PolygonPrimitive{
		Name:      a.Name,
		Positions: positions,
		Holes:     [][]core.Cartesian{},
		Fill:      c.style.PolygonFill,
	}, nil
}

func colorOr(v *core.Color, def core.Color) core.Color {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
