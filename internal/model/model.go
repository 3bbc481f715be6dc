package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Scenario{},
	&AssetRecord{},
	&DeploymentRecord{},
	&AttackRecord{},
}

// Scenario groups the records imported from one scenario document
type Scenario struct {
	gorm.Model
	Name        string             `json:"name" gorm:"size:127;uniqueIndex"`
	Source      string             `json:"source" gorm:"size:255"`
	Assets      []AssetRecord      `gorm:"foreignKey:ScenarioID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Deployments []DeploymentRecord `gorm:"foreignKey:ScenarioID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Attacks     []AttackRecord     `gorm:"foreignKey:ScenarioID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (*Scenario) TableName() string {
	return "scenarios"
}

// AssetRecord is a protected zone. Coordinates hold the ring as a JSON
// array of {latitude, longitude, height} objects.
type AssetRecord struct {
	ID          uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	ScenarioID  uint           `json:"scenarioId" gorm:"index:idx_asset_scenario_id"`
	Name        string         `json:"name" gorm:"size:127"`
	Color       string         `json:"color" gorm:"size:64"`
	BorderColor string         `json:"borderColor" gorm:"size:64"`
	Geometry    string         `json:"geometry" gorm:"size:16"`
	Coordinates datatypes.JSON `json:"coordinates"`
}

func (*AssetRecord) TableName() string {
	return "assets"
}

// DeploymentRecord is a named group of physical models
type DeploymentRecord struct {
	ID             uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	ScenarioID     uint           `json:"scenarioId" gorm:"index:idx_deployment_scenario_id"`
	Name           string         `json:"name" gorm:"size:127"`
	Color          string         `json:"color" gorm:"size:64"`
	Geometry       string         `json:"geometry" gorm:"size:16"`
	Coordinates    datatypes.JSON `json:"coordinates"`
	PhysicalModels datatypes.JSON `json:"physicalModels"`
}

func (*DeploymentRecord) TableName() string {
	return "deployments"
}

// AttackRecord is a threat with its target point and trajectory legs
type AttackRecord struct {
	ID         uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	ScenarioID uint           `json:"scenarioId" gorm:"index:idx_attack_scenario_id"`
	Name       string         `json:"name" gorm:"size:127"`
	Target     datatypes.JSON `json:"targetsMetadata"`
}

func (*AttackRecord) TableName() string {
	return "attacks"
}
