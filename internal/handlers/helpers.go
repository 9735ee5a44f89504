package handlers

import (
	"encoding/json"
	"errors"

	"github.com/ascendhq/ascend-go/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// isNoRows reports whether a query found nothing.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// isUniqueViolation reports whether an insert lost a race against the
// table's uniqueness constraint. The constraints are the arbiters for
// toggle and request races, so this is an expected signal, not a bug.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// decodePlan unmarshals a roadmap's stored weekly plan JSONB.
func decodePlan(raw []byte) ([]models.PlanWeek, error) {
	var plan []models.PlanWeek
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// encodePlan marshals a weekly plan for storage.
func encodePlan(plan []models.PlanWeek) ([]byte, error) {
	return json.Marshal(plan)
}
