package convert

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/globe/internal/model"
	"github.com/OCAP2/globe/internal/model/core"
	"gorm.io/datatypes"
)

// encodeJSON marshals v for a JSON column. A nil slice or pointer is stored as NULL.
func encodeJSON(column string, v any) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", column, err)
	}
	if string(data) == "null" {
		return nil, nil
	}
	return datatypes.JSON(data), nil
}

// CoreToAsset converts a core.AssetForCesium to a GORM model.AssetRecord.
func CoreToAsset(a core.AssetForCesium) (model.AssetRecord, error) {
	coords, err := encodeJSON("coordinates", a.Coordinates)
	if err != nil {
		return model.AssetRecord{}, err
	}
	return model.AssetRecord{
		Name:        a.Name,
		Color:       a.Color,
		BorderColor: a.BorderColor,
		Geometry:    string(a.Geometry),
		Coordinates: coords,
	}, nil
}

// CoreToDeployment converts a core.DeploymentForCesium to a GORM model.DeploymentRecord.
func CoreToDeployment(d core.DeploymentForCesium) (model.DeploymentRecord, error) {
	coords, err := encodeJSON("coordinates", d.Coordinates)
	if err != nil {
		return model.DeploymentRecord{}, err
	}
	models, err := encodeJSON("physicalModels", d.PhysicalModels)
	if err != nil {
		return model.DeploymentRecord{}, err
	}
	return model.DeploymentRecord{
		Name:           d.Name,
		Color:          d.Color,
		Geometry:       string(d.Geometry),
		Coordinates:    coords,
		PhysicalModels: models,
	}, nil
}

// CoreToAttack converts a core.AttackForCesium to a GORM model.AttackRecord.
func CoreToAttack(a core.AttackForCesium) (model.AttackRecord, error) {
	target, err := encodeJSON("targetsMetadata", a.TargetsMetadata)
	if err != nil {
		return model.AttackRecord{}, err
	}
	return model.AttackRecord{
		Name:   a.Name,
		Target: target,
	}, nil
}

// CoreToScenario converts a core.MapModel into a GORM scenario with child records.
func CoreToScenario(name, source string, m core.MapModel) (model.Scenario, error) {
	s := model.Scenario{Name: name, Source: source}

	for i, a := range m.Assets {
		rec, err := CoreToAsset(a)
		if err != nil {
			return model.Scenario{}, fmt.Errorf("assets[%d]: %w", i, err)
		}
		s.Assets = append(s.Assets, rec)
	}
	for i, d := range m.Deployments {
		rec, err := CoreToDeployment(d)
		if err != nil {
			return model.Scenario{}, fmt.Errorf("deployments[%d]: %w", i, err)
		}
		s.Deployments = append(s.Deployments, rec)
	}
	for i, a := range m.Attacks {
		rec, err := CoreToAttack(a)
		if err != nil {
			return model.Scenario{}, fmt.Errorf("attacks[%d]: %w", i, err)
		}
		s.Attacks = append(s.Attacks, rec)
	}

	return s, nil
}
