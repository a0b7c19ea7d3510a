package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
)

const statusPending = "pending"

// reviewUpdate moves a pending row of table to status and stamps the reviewer.
// extraSet holds additional assignments numbered from $6 and filled from extraArgs.
type reviewUpdate struct {
	table     string
	notFound  error
	extraSet  string
	extraArgs []interface{}
}

func (u reviewUpdate) apply(ctx context.Context, q database.Querier, id string, status interface{}, reviewerID string, notes *string, at time.Time) (bool, error) {
	query := `
		UPDATE ` + u.table + `
		SET status = $2, reviewed_by = $3, reviewed_at = $4, review_notes = $5` + u.extraSet + `
		WHERE id = $1 AND status = '` + statusPending + `'
	`

	args := append([]interface{}{id, status, reviewerID, at, notes}, u.extraArgs...)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		if isNotFound(err) {
			return false, u.notFound
		}
		return false, fmt.Errorf("failed to resolve %s %s: %w", u.table, id, err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+u.table+` WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s %s: %w", u.table, id, err)
	}
	if !exists {
		return false, u.notFound
	}
	return false, nil
}
