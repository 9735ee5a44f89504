package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Counter reconciliation. The denormalized counters are owned by the
// mutations that move the underlying edges, so they are never recounted
// at read time; this is the operational escape hatch for repairing
// drift after a partial failure.
var reconcileStatements = []string{
	`UPDATE users u SET follower_count = sub.n
	 FROM (SELECT id, (SELECT COUNT(*) FROM follows f WHERE f.followed_id = users.id) AS n FROM users) sub
	 WHERE u.id = sub.id AND u.follower_count <> sub.n`,

	`UPDATE users u SET close_friend_count = sub.n
	 FROM (SELECT id, (SELECT COUNT(*) FROM friend_requests fr
	        WHERE fr.status = 'accepted' AND (fr.sender_id = users.id OR fr.receiver_id = users.id)) AS n
	       FROM users) sub
	 WHERE u.id = sub.id AND u.close_friend_count <> sub.n`,

	`UPDATE roadmaps r SET star_count = sub.n
	 FROM (SELECT id, (SELECT COUNT(*) FROM roadmap_stars s WHERE s.roadmap_id = roadmaps.id) AS n FROM roadmaps) sub
	 WHERE r.id = sub.id AND r.star_count <> sub.n`,
}

// ReconcileCounters recomputes every denormalized counter from its edge
// table, touching only rows that drifted.
func ReconcileCounters(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range reconcileStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
