package source

import (
	"context"
	"testing"

	"github.com/OCAP2/globe/internal/database"
	"github.com/OCAP2/globe/internal/model/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.GetSqliteDB("")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func loadSample(t *testing.T) core.MapModel {
	t.Helper()
	m, err := NewFileLoader(sampleScenario).Load(context.Background())
	require.NoError(t, err)
	return m
}

func TestDBLoader_SaveAndLoad(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	in := loadSample(t)

	l := NewDBLoader(db, "sample")
	id, err := l.Save(ctx, "sample", sampleScenario, in)
	require.NoError(t, err)
	assert.NotZero(t, id)

	out, err := l.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDBLoader_PreservesOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	in := core.MapModel{
		Assets:      []core.AssetForCesium{},
		Deployments: []core.DeploymentForCesium{},
		Attacks: []core.AttackForCesium{
			{Name: "c"}, {Name: "a"}, {Name: "b"},
		},
	}
	l := NewDBLoader(db, "ordered")
	_, err := l.Save(ctx, "ordered", "test", in)
	require.NoError(t, err)

	out, err := l.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out.Attacks, 3)
	assert.Equal(t, "c", out.Attacks[0].Name)
	assert.Equal(t, "a", out.Attacks[1].Name)
	assert.Equal(t, "b", out.Attacks[2].Name)
}

func TestDBLoader_SaveReplacesSameName(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := NewDBLoader(db, "dup")

	_, err := l.Save(ctx, "dup", "first", loadSample(t))
	require.NoError(t, err)

	second := core.MapModel{
		Assets:      []core.AssetForCesium{},
		Deployments: []core.DeploymentForCesium{},
		Attacks:     []core.AttackForCesium{{Name: "only"}},
	}
	_, err = l.Save(ctx, "dup", "second", second)
	require.NoError(t, err)

	out, err := l.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, out.Assets)
	require.Len(t, out.Attacks, 1)
	assert.Equal(t, "only", out.Attacks[0].Name)

	names, err := l.Scenarios(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dup"}, names)
}

func TestDBLoader_LatestWhenUnnamed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	named := NewDBLoader(db, "")
	_, err := named.Save(ctx, "older", "x", core.MapModel{Attacks: []core.AttackForCesium{{Name: "old"}}})
	require.NoError(t, err)
	_, err = named.Save(ctx, "newer", "x", core.MapModel{Attacks: []core.AttackForCesium{{Name: "new"}}})
	require.NoError(t, err)

	out, err := named.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out.Attacks, 1)
	assert.Equal(t, "new", out.Attacks[0].Name)
	assert.Equal(t, "newer", named.Name())
}

func TestDBLoader_NameBeforeLoad(t *testing.T) {
	db := setupTestDB(t)
	assert.Equal(t, "requested", NewDBLoader(db, "requested").Name())
	assert.Empty(t, NewDBLoader(db, "").Name())
}

func TestDBLoader_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := NewDBLoader(db, "missing").Load(context.Background())
	require.ErrorIs(t, err, ErrScenarioNotFound)
}
