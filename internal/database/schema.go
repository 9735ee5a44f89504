package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema statements, applied in order at startup. Each entity gets one
// table; the unique indexes double as the concurrency arbiters for
// toggle and request races (duplicate inserts fail on the constraint
// instead of double-counting).
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		total_xp INTEGER NOT NULL DEFAULT 0 CHECK (total_xp >= 0),
		level INTEGER NOT NULL DEFAULT 0 CHECK (level >= 0),
		streak INTEGER NOT NULL DEFAULT 0 CHECK (streak >= 0),
		last_active_date DATE,
		body_xp INTEGER NOT NULL DEFAULT 0 CHECK (body_xp >= 0),
		skills_xp INTEGER NOT NULL DEFAULT 0 CHECK (skills_xp >= 0),
		mindset_xp INTEGER NOT NULL DEFAULT 0 CHECK (mindset_xp >= 0),
		career_xp INTEGER NOT NULL DEFAULT 0 CHECK (career_xp >= 0),
		custom_xp INTEGER NOT NULL DEFAULT 0 CHECK (custom_xp >= 0),
		is_profile_public BOOLEAN NOT NULL DEFAULT false,
		allow_close_friend_requests BOOLEAN NOT NULL DEFAULT true,
		follower_count INTEGER NOT NULL DEFAULT 0 CHECK (follower_count >= 0),
		close_friend_count INTEGER NOT NULL DEFAULT 0 CHECK (close_friend_count >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique ON users (LOWER(email))`,

	`CREATE TABLE IF NOT EXISTS roadmaps (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		goal TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		skill_level TEXT NOT NULL DEFAULT 'beginner',
		difficulty TEXT NOT NULL CHECK (difficulty IN ('easy', 'medium', 'hard')),
		duration INTEGER NOT NULL CHECK (duration BETWEEN 1 AND 52),
		weekly_plan JSONB NOT NULL DEFAULT '[]',
		progress INTEGER NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
		is_public BOOLEAN NOT NULL DEFAULT false,
		is_custom BOOLEAN NOT NULL DEFAULT false,
		star_count INTEGER NOT NULL DEFAULT 0 CHECK (star_count >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS roadmaps_user_idx ON roadmaps (user_id)`,

	`CREATE TABLE IF NOT EXISTS task_progress (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		roadmap_id UUID NOT NULL REFERENCES roadmaps(id),
		week INTEGER NOT NULL,
		day TEXT NOT NULL,
		task_title TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT false,
		xp_earned INTEGER NOT NULL DEFAULT 0 CHECK (xp_earned >= 0),
		category TEXT NOT NULL CHECK (category IN ('Body', 'Skills', 'Mindset', 'Career')),
		completed_at TIMESTAMPTZ,
		UNIQUE (user_id, roadmap_id, task_title)
	)`,
	`CREATE INDEX IF NOT EXISTS task_progress_roadmap_idx ON task_progress (user_id, roadmap_id)`,

	`CREATE TABLE IF NOT EXISTS follows (
		id UUID PRIMARY KEY,
		follower_id UUID NOT NULL REFERENCES users(id),
		followed_id UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (follower_id, followed_id),
		CHECK (follower_id <> followed_id)
	)`,
	`CREATE INDEX IF NOT EXISTS follows_followed_idx ON follows (followed_id)`,

	`CREATE TABLE IF NOT EXISTS friend_requests (
		id UUID PRIMARY KEY,
		sender_id UUID NOT NULL REFERENCES users(id),
		receiver_id UUID NOT NULL REFERENCES users(id),
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'declined')),
		resend_after TIMESTAMPTZ,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (sender_id, receiver_id),
		CHECK (sender_id <> receiver_id)
	)`,
	`CREATE INDEX IF NOT EXISTS friend_requests_receiver_idx ON friend_requests (receiver_id, status)`,
	`CREATE INDEX IF NOT EXISTS friend_requests_sender_idx ON friend_requests (sender_id, status)`,

	`CREATE TABLE IF NOT EXISTS roadmap_stars (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		roadmap_id UUID NOT NULL REFERENCES roadmaps(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, roadmap_id)
	)`,
	`CREATE INDEX IF NOT EXISTS roadmap_stars_roadmap_idx ON roadmap_stars (roadmap_id)`,

	`CREATE TABLE IF NOT EXISTS task_resources (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		roadmap_id UUID NOT NULL REFERENCES roadmaps(id),
		week INTEGER NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('video', 'audio', 'website', 'article', 'book', 'other')),
		url TEXT NOT NULL,
		label TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS task_resources_module_idx ON task_resources (user_id, roadmap_id, week)`,
}

// EnsureSchema creates all tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
