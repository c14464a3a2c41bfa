// Package seed bootstraps the default organization and US reference
// data on startup.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultOrgName = "Main"
	defaultOrgSlug = "main"
)

// Organization owns transactions, rules and derived statuses. Single
// tenant deployments run with just the seeded main org.
type Organization struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Slug      string       `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Organization) TableName() string { return "organizations" }

// EnsureMainOrg seeds the default organization for startup bootstrap.
func EnsureMainOrg(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}
	return ensureOrg(db, node.Generate())
}

// EnsureMainOrgWithID pins the default organization to a configured id
// so uploads referencing it stay stable across rebuilt databases.
func EnsureMainOrgWithID(db *gorm.DB, id int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	return ensureOrg(db, snowflake.ParseInt64(id))
}

func ensureOrg(db *gorm.DB, id snowflake.ID) error {
	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var org Organization
		err := tx.Where("slug = ?", defaultOrgSlug).First(&org).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		org = Organization{
			ID:        id,
			Name:      defaultOrgName,
			Slug:      defaultOrgSlug,
			CreatedAt: time.Now().UTC(),
		}
		return tx.Create(&org).Error
	})
}

// EnsureReferenceData loads states and combined tax rates idempotently,
// and installs the default threshold rules only when the rules table is
// empty so operator edits survive restarts.
func EnsureReferenceData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	ctx := context.Background()

	states := stateRows()
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&states).Error; err != nil {
		return err
	}

	rates := taxRateRows()
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rates).Error; err != nil {
		return err
	}

	var ruleCount int64
	if err := db.WithContext(ctx).Table("nexus_rules").Count(&ruleCount).Error; err != nil {
		return err
	}
	if ruleCount > 0 {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}
	rules, err := defaultRuleRows(node)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(&rules).Error
}
