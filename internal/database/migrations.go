package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AddIndexes adds composite indexes that AutoMigrate's column tags do
// not cover: the listing sort orders and the open-interval lookups.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Listing order: apellidos, nombres
		{"voters", "idx_voters_apellidos_nombres", "apellidos, nombres"},
		{"leaders", "idx_leaders_apellidos_nombres", "apellidos_lider, nombres_lider"},

		// Aggregation dimensions
		{"voters", "idx_voters_donde_vota_mesa", "donde_vota, mesa_votacion"},
		{"voters", "idx_voters_checked_in_at", "checked_in_at"},

		// Open-interval lookups during toggle
		{"voter_check_ins", "idx_voter_check_ins_open", "voter_id, checked_out_at"},
		{"leader_check_ins", "idx_leader_check_ins_open", "leader_id, checked_out_at"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Scan(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
