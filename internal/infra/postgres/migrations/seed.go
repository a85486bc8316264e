package migrations

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"vmm-exam-service/internal/domain"
)

// SeedBanks upserts the given banks into question_banks.
func SeedBanks(ctx context.Context, db *bun.DB, banks ...domain.QuestionBank) error {
	for _, bank := range banks {
		data, err := json.Marshal(bank)
		if err != nil {
			return fmt.Errorf("marshal bank %s: %w", bank.ID, err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO question_banks (id, title, data) VALUES (?, ?, ?::jsonb)
			 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, data=EXCLUDED.data, updated_at=now()`,
			bank.ID, bank.Title, string(data)); err != nil {
			return fmt.Errorf("seed bank %s: %w", bank.ID, err)
		}
	}
	return nil
}
