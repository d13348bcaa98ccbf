package database

import (
	"errors"
	"time"

	"github.com/yearendparty/banquet/backend/internal/voting"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationRepairVoteCounts = "2026-01-20_repair_negative_vote_counts"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationRepairVoteCounts, apply: repairNegativeVoteCounts},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// Tallies written by builds that decremented on vote deletion could go
// below zero; the counter is display-only so clamping is safe.
func repairNegativeVoteCounts(db *gorm.DB) error {
	return db.Model(&voting.Photo{}).
		Where("vote_count < 0").
		Update("vote_count", 0).Error
}
