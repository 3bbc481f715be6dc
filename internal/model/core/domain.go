// internal/model/core/domain.go
package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Coordinate is a single location as delivered by upstream producers.
// Despite the field names, Latitude/Longitude/Height carry pre-projected
// cartesian X/Y/Z values; nothing in this module reprojects them.
type Coordinate struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Height    *float64 `json:"height,omitempty"`
}

// Geometry is the declared shape of an asset or deployment
type Geometry string

const (
	GeometryPolygon  Geometry = "Polygon"
	GeometryPolyline Geometry = "Polyline"
	GeometryPoint    Geometry = "Point"
)

// UnmarshalJSON accepts the geometry name in any case.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "polygon":
		*g = GeometryPolygon
	case "polyline":
		*g = GeometryPolyline
	case "point":
		*g = GeometryPoint
	default:
		return fmt.Errorf("unknown geometry %q", s)
	}
	return nil
}

// PointEntity is a named, located marker (radar, sensor, target).
// Nil styling fields fall back to the configured style.
type PointEntity struct {
	Name               string      `json:"name"`
	Location           *Coordinate `json:"location"`
	Icon               string      `json:"icon,omitempty"`
	Color              *Color      `json:"color,omitempty"`
	PixelSize          *float64    `json:"pixelSize,omitempty"`
	OutlineColor       *Color      `json:"outlineColor,omitempty"`
	OutlineWidth       *float64    `json:"outlineWidth,omitempty"`
	NameColor          *Color      `json:"nameColor,omitempty"`
	NameFont           *string     `json:"nameFont,omitempty"`
	ShowNameBackground bool        `json:"showNameBackground,omitempty"`
	OnGround           bool        `json:"onGround,omitempty"`
}

// AssetForCesium is a named protected zone bounded by a closed ring
type AssetForCesium struct {
	Name        string       `json:"name"`
	Color       string       `json:"color"`
	BorderColor string       `json:"borderColor,omitempty"`
	Geometry    Geometry     `json:"geometry"`
	Coordinates []Coordinate `json:"coordinates"`
}

// DeploymentForCesium is a named formation of physical models
type DeploymentForCesium struct {
	Name           string        `json:"name"`
	PhysicalModels []PointEntity `json:"physicalModels"`
	Coordinates    []Coordinate  `json:"coordinates,omitempty"`
	Geometry       Geometry      `json:"geometry,omitempty"`
	Color          string        `json:"color,omitempty"`
}

// TargetTrajectory is one leg from the target location to EndPoint
type TargetTrajectory struct {
	EndPoint  *Coordinate `json:"endPoint"`
	LineWidth *float64    `json:"lineWidth,omitempty"`
	LineColor *Color      `json:"lineColor,omitempty"`
	Name      *string     `json:"name,omitempty"`
}

// TargetMetadata is the attack target together with its trajectory legs
type TargetMetadata struct {
	PointEntity
	Trajectories []TargetTrajectory `json:"trajectories"`
}

// AttackForCesium is a named attack on a single target
type AttackForCesium struct {
	Name            string         `json:"name"`
	TargetsMetadata TargetMetadata `json:"targetsMetadata"`
}

// MapModel groups the three record collections handed to the converter
type MapModel struct {
	Assets      []AssetForCesium      `json:"assets"`
	Deployments []DeploymentForCesium `json:"deployments"`
	Attacks     []AttackForCesium     `json:"attacks"`
}

// Overlay is a static icon placed on the globe next to the scenario entities
type Overlay struct {
	Name     string     `json:"name"`
	Image    string     `json:"image"`
	Position Coordinate `json:"position"`
}
