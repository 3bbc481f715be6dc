// Package style holds the palette of default values the converter falls back
// to when a record leaves a styling field unset.
package style

import (
	"errors"
	"fmt"

	"github.com/OCAP2/globe/internal/model/core"
)

// Style is an immutable set of defaults. Pass it by value.
type Style struct {
	MarkerColor        core.Color
	PixelSize          float64
	OutlineColor       core.Color
	OutlineWidth       float64
	NameFont           string
	LabelFillColor     core.Color
	LabelBackground    core.Color
	LabelPadding       [2]float64
	LineWidth          float64
	LineColor          core.Color
	TrajectoryName     string
	PolygonFill        core.Color
	LabelHorizontalPos string
	LabelVerticalPos   string
}

// Default returns the stock palette.
func Default() Style {
	return Style{
		MarkerColor:        core.MustParseColor("blueviolet"),
		PixelSize:          20,
		OutlineColor:       core.MustParseColor("red"),
		OutlineWidth:       3,
		NameFont:           "14pt sans-serif",
		LabelFillColor:     core.MustParseColor("black"),
		LabelBackground:    core.NewColor(1, 1, 1).WithAlpha(0.7),
		LabelPadding:       [2]float64{8, 4},
		LineWidth:          3,
		LineColor:          core.MustParseColor("red"),
		TrajectoryName:     "trajectory",
		PolygonFill:        core.MustParseColor("blue").WithAlpha(0.5),
		LabelHorizontalPos: "LEFT",
		LabelVerticalPos:   "BASELINE",
	}
}

// Validate reports every invalid field at once.
func (s Style) Validate() error {
	var errs []error
	if s.PixelSize <= 0 {
		errs = append(errs, fmt.Errorf("pixelSize must be positive, got %v", s.PixelSize))
	}
	if s.OutlineWidth < 0 {
		errs = append(errs, fmt.Errorf("outlineWidth must not be negative, got %v", s.OutlineWidth))
	}
	if s.LineWidth <= 0 {
		errs = append(errs, fmt.Errorf("lineWidth must be positive, got %v", s.LineWidth))
	}
	if s.NameFont == "" {
		errs = append(errs, errors.New("nameFont must not be empty"))
	}
	if s.TrajectoryName == "" {
		errs = append(errs, errors.New("trajectoryName must not be empty"))
	}
	colors := map[string]core.Color{
		"markerColor":     s.MarkerColor,
		"outlineColor":    s.OutlineColor,
		"labelFillColor":  s.LabelFillColor,
		"labelBackground": s.LabelBackground,
		"lineColor":       s.LineColor,
		"polygonFill":     s.PolygonFill,
	}
	for _, name := range []string{"markerColor", "outlineColor", "labelFillColor", "labelBackground", "lineColor", "polygonFill"} {
		if !colors[name].Valid() {
			errs = append(errs, fmt.Errorf("%s has a channel outside 0..1", name))
		}
	}
	return errors.Join(errs...)
}
