package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/OCAP2/globe/internal/model"
	"github.com/OCAP2/globe/internal/model/convert"
	"github.com/OCAP2/globe/internal/model/core"
	"gorm.io/gorm"
)

// DBLoader reads and writes scenarios in the scenario database
type DBLoader struct {
	db       *gorm.DB
	scenario string
	loaded   string
}

// NewDBLoader creates a loader for the named scenario.
// An empty name loads the most recently imported scenario.
func NewDBLoader(db *gorm.DB, scenario string) *DBLoader {
	return &DBLoader{db: db, scenario: scenario}
}

func byID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// Load reads the scenario with its records in insertion order.
func (l *DBLoader) Load(ctx context.Context) (core.MapModel, error) {
	q := l.db.WithContext(ctx).
		Preload("Assets", byID).
		Preload("Deployments", byID).
		Preload("Attacks", byID)

	if l.scenario != "" {
		q = q.Where("name = ?", l.scenario)
	} else {
		q = q.Order("id DESC")
	}

	var s model.Scenario
	err := q.First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.MapModel{}, fmt.Errorf("%w: %q", ErrScenarioNotFound, l.scenario)
	}
	if err != nil {
		return core.MapModel{}, fmt.Errorf("load scenario: %w", err)
	}

	l.loaded = s.Name
	return convert.ScenarioToCore(s)
}

// Name returns the name of the scenario read by the last successful Load,
// or the requested name before any Load.
func (l *DBLoader) Name() string {
	if l.loaded != "" {
		return l.loaded
	}
	return l.scenario
}

// Save stores m under name, replacing any scenario with the same name.
// It returns the new scenario ID.
func (l *DBLoader) Save(ctx context.Context, name, origin string, m core.MapModel) (uint, error) {
	s, err := convert.CoreToScenario(name, origin, m)
	if err != nil {
		return 0, err
	}

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Unscoped().Model(&model.Scenario{}).Where("name = ?", name).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			for _, child := range []any{&model.AssetRecord{}, &model.DeploymentRecord{}, &model.AttackRecord{}} {
				if err := tx.Where("scenario_id IN ?", ids).Delete(child).Error; err != nil {
					return err
				}
			}
			if err := tx.Unscoped().Delete(&model.Scenario{}, ids).Error; err != nil {
				return err
			}
		}
		return tx.Create(&s).Error
	})
	if err != nil {
		return 0, fmt.Errorf("save scenario %q: %w", name, err)
	}
	return s.ID, nil
}

// Scenarios lists the stored scenario names, oldest first.
func (l *DBLoader) Scenarios(ctx context.Context) ([]string, error) {
	var names []string
	err := l.db.WithContext(ctx).Model(&model.Scenario{}).Order("id ASC").Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	return names, nil
}
