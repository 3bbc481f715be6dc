// Package entities turns scenario records (zones, deployments, attacks) into
// renderer-agnostic scene primitives with every default resolved.
//
// A Converter is a value holding an immutable style; it keeps no other state,
// so one Converter can be shared by any number of goroutines.
package entities

import (
	"github.com/OCAP2/globe/internal/geo"
	"github.com/OCAP2/globe/internal/model/core"
	"github.com/OCAP2/globe/internal/style"
)

// Converter builds primitives using the defaults of its style.
// A default applies only to an absent field: explicit zero values such as
// lineWidth 0, pixelSize 0, an empty name or height 0 are kept as given.
type Converter struct {
	style style.Style
}

// New creates a Converter with the given style.
func New(s style.Style) Converter {
	return Converter{style: s}
}

// Style returns the defaults this Converter applies.
func (c Converter) Style() style.Style {
	return c.style
}

// ConvertAsset converts a protected zone into a polygon.
func (c Converter) ConvertAsset(a core.AssetForCesium) (core.PolygonPrimitive, error) {
	return c.buildPolygon(a, "")
}

// ConvertDeployment converts every physical model of a deployment, keeping order.
func (c Converter) ConvertDeployment(d core.DeploymentForCesium) (core.CesiumDeployment, error) {
	return c.convertDeployment(d, "")
}

// ConvertAttack converts the target and all of its trajectory legs.
// Every leg starts at the target location, normalised once.
func (c Converter) ConvertAttack(a core.AttackForCesium) (core.CesiumAttack, error) {
	return c.convertAttack(a, "")
}

// ConvertModel converts all three collections. It stops at the first invalid record.
func (c Converter) ConvertModel(m core.MapModel) (core.Scene, error) {
	scene := core.Scene{
		Assets:      make([]core.PolygonPrimitive, 0, len(m.Assets)),
		Deployments: make([]core.CesiumDeployment, 0, len(m.Deployments)),
		Attacks:     make([]core.CesiumAttack, 0, len(m.Attacks)),
	}

	for i, a := range m.Assets {
		p, err := c.buildPolygon(a, index("assets", i))
		if err != nil {
			return core.Scene{}, err
		}
		scene.Assets = append(scene.Assets, p)
	}

	for i, d := range m.Deployments {
		dep, err := c.convertDeployment(d, index("deployments", i))
		if err != nil {
			return core.Scene{}, err
		}
		scene.Deployments = append(scene.Deployments, dep)
	}

	for i, a := range m.Attacks {
		att, err := c.convertAttack(a, index("attacks", i))
		if err != nil {
			return core.Scene{}, err
		}
		scene.Attacks = append(scene.Attacks, att)
	}

	return scene, nil
}

// ConvertOverlays converts static icons into billboards, keeping order.
func (c Converter) ConvertOverlays(overlays []core.Overlay) []core.BillboardPrimitive {
	out := make([]core.BillboardPrimitive, 0, len(overlays))
	for _, o := range overlays {
		out = append(out, c.BuildBillboard(o))
	}
	return out
}

func (c Converter) convertDeployment(d core.DeploymentForCesium, path string) (core.CesiumDeployment, error) {
	models := make([]core.PointPrimitive, 0, len(d.PhysicalModels))
	for i, pm := range d.PhysicalModels {
		p, err := c.buildPoint(pm, index(join(path, "physicalModels"), i))
		if err != nil {
			return core.CesiumDeployment{}, err
		}
		models = append(models, p)
	}
	return core.CesiumDeployment{Name: d.Name, PhysicalModels: models}, nil
}

func (c Converter) convertAttack(a core.AttackForCesium, path string) (core.CesiumAttack, error) {
	targetPath := join(path, "targetsMetadata")
	tm := a.TargetsMetadata

	if tm.Location == nil {
		return core.CesiumAttack{}, missing(join(targetPath, "location"))
	}
	start := geo.Normalize(*tm.Location)

	target, err := c.buildPoint(tm.PointEntity, targetPath)
	if err != nil {
		return core.CesiumAttack{}, err
	}

	legs := make([]core.LinePrimitive, 0, len(tm.Trajectories))
	for i, leg := range tm.Trajectories {
		line, err := c.buildLine(start, leg, index(join(targetPath, "trajectories"), i))
		if err != nil {
			return core.CesiumAttack{}, err
		}
		legs = append(legs, line)
	}

	return core.CesiumAttack{
		Name:         a.Name,
		Target:       target,
		Trajectories: legs,
	}, nil
}
