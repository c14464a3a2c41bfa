package seed

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	referencedomain "github.com/nexorahq/nexora/internal/reference/domain"
	ruledomain "github.com/nexorahq/nexora/internal/rule/domain"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&Organization{},
		&referencedomain.State{},
		&referencedomain.StateTaxRate{},
		&ruledomain.NexusRule{},
	))
	return db
}

func TestEnsureMainOrg_Idempotent(t *testing.T) {
	db := setupSeedDB(t)

	require.NoError(t, EnsureMainOrg(db))
	require.NoError(t, EnsureMainOrg(db))

	var count int64
	require.NoError(t, db.Model(&Organization{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureMainOrgWithID_PinsID(t *testing.T) {
	db := setupSeedDB(t)

	require.NoError(t, EnsureMainOrgWithID(db, 424242))

	var org Organization
	require.NoError(t, db.Where("slug = ?", "main").First(&org).Error)
	assert.Equal(t, int64(424242), org.ID.Int64())
}

func TestEnsureReferenceData_Idempotent(t *testing.T) {
	db := setupSeedDB(t)

	require.NoError(t, EnsureReferenceData(db))

	var states, rates, rules int64
	require.NoError(t, db.Model(&referencedomain.State{}).Count(&states).Error)
	require.NoError(t, db.Model(&referencedomain.StateTaxRate{}).Count(&rates).Error)
	require.NoError(t, db.Model(&ruledomain.NexusRule{}).Count(&rules).Error)

	// 50 states plus DC; the no-sales-tax states carry no rate or rule.
	assert.Equal(t, int64(51), states)
	assert.Equal(t, int64(47), rates)
	assert.Equal(t, int64(47), rules)

	require.NoError(t, EnsureReferenceData(db))

	var statesAgain, rulesAgain int64
	require.NoError(t, db.Model(&referencedomain.State{}).Count(&statesAgain).Error)
	require.NoError(t, db.Model(&ruledomain.NexusRule{}).Count(&rulesAgain).Error)
	assert.Equal(t, states, statesAgain)
	assert.Equal(t, rules, rulesAgain)
}

func TestEnsureReferenceData_PreservesRuleEdits(t *testing.T) {
	db := setupSeedDB(t)
	require.NoError(t, EnsureReferenceData(db))

	// Operator lowers a threshold; a restart must not reinstall defaults.
	require.NoError(t, db.Exec(`UPDATE nexus_rules SET revenue_threshold = 1 WHERE state = 'CO'`).Error)
	require.NoError(t, EnsureReferenceData(db))

	var rule ruledomain.NexusRule
	require.NoError(t, db.Where("state = ?", "CO").First(&rule).Error)
	require.NotNil(t, rule.RevenueThreshold)
	assert.Equal(t, 1.0, *rule.RevenueThreshold)
}
