// Package convert provides functions to convert GORM models to core models
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/globe/internal/model"
	"github.com/OCAP2/globe/internal/model/core"
)

// decodeJSON unmarshals a JSON column; an empty column leaves dst untouched.
func decodeJSON(column string, data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", column, err)
	}
	return nil
}

// AssetToCore converts a GORM AssetRecord to a core.AssetForCesium.
// A NULL coordinates column stays nil so the converter can report it.
func AssetToCore(a model.AssetRecord) (core.AssetForCesium, error) {
	out := core.AssetForCesium{
		Name:        a.Name,
		Color:       a.Color,
		BorderColor: a.BorderColor,
		Geometry:    core.Geometry(a.Geometry),
	}
	if err := decodeJSON("coordinates", a.Coordinates, &out.Coordinates); err != nil {
		return core.AssetForCesium{}, err
	}
	return out, nil
}

// DeploymentToCore converts a GORM DeploymentRecord to a core.DeploymentForCesium.
func DeploymentToCore(d model.DeploymentRecord) (core.DeploymentForCesium, error) {
	out := core.DeploymentForCesium{
		Name:     d.Name,
		Color:    d.Color,
		Geometry: core.Geometry(d.Geometry),
	}
	if err := decodeJSON("coordinates", d.Coordinates, &out.Coordinates); err != nil {
		return core.DeploymentForCesium{}, err
	}
	if err := decodeJSON("physicalModels", d.PhysicalModels, &out.PhysicalModels); err != nil {
		return core.DeploymentForCesium{}, err
	}
	return out, nil
}

// AttackToCore converts a GORM AttackRecord to a core.AttackForCesium.
func AttackToCore(a model.AttackRecord) (core.AttackForCesium, error) {
	out := core.AttackForCesium{Name: a.Name}
	if err := decodeJSON("targetsMetadata", a.Target, &out.TargetsMetadata); err != nil {
		return core.AttackForCesium{}, err
	}
	return out, nil
}

// ScenarioToCore converts a scenario with its preloaded records to a core.MapModel.
func ScenarioToCore(s model.Scenario) (core.MapModel, error) {
	m := core.MapModel{
		Assets:      make([]core.AssetForCesium, 0, len(s.Assets)),
		Deployments: make([]core.DeploymentForCesium, 0, len(s.Deployments)),
		Attacks:     make([]core.AttackForCesium, 0, len(s.Attacks)),
	}

	for _, rec := range s.Assets {
		a, err := AssetToCore(rec)
		if err != nil {
			return core.MapModel{}, fmt.Errorf("asset %d: %w", rec.ID, err)
		}
		m.Assets = append(m.Assets, a)
	}
	for _, rec := range s.Deployments {
		d, err := DeploymentToCore(rec)
		if err != nil {
			return core.MapModel{}, fmt.Errorf("deployment %d: %w", rec.ID, err)
		}
		m.Deployments = append(m.Deployments, d)
	}
	for _, rec := range s.Attacks {
		a, err := AttackToCore(rec)
		if err != nil {
			return core.MapModel{}, fmt.Errorf("attack %d: %w", rec.ID, err)
		}
		m.Attacks = append(m.Attacks, a)
	}

	return m, nil
}
