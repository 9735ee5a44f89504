package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account plus its XP ledger state.
//
// TotalXP and the four category fields only ever move together for
// AI-roadmap activity; XP earned on custom (self-authored) roadmaps is
// routed to CustomXP so the leaderboard, which ranks by TotalXP, cannot
// be inflated by self-graded plans.
type User struct {
	ID                       uuid.UUID  `json:"id" db:"id"`
	Name                     string     `json:"name" db:"name"`
	Email                    string     `json:"email" db:"email"`
	PasswordHash             string     `json:"-" db:"password_hash"`
	TotalXP                  int        `json:"total_xp" db:"total_xp"`
	Level                    int        `json:"level" db:"level"`
	Streak                   int        `json:"streak" db:"streak"`
	LastActiveDate           *time.Time `json:"last_active_date,omitempty" db:"last_active_date"`
	BodyXP                   int        `json:"body_xp" db:"body_xp"`
	SkillsXP                 int        `json:"skills_xp" db:"skills_xp"`
	MindsetXP                int        `json:"mindset_xp" db:"mindset_xp"`
	CareerXP                 int        `json:"career_xp" db:"career_xp"`
	CustomXP                 int        `json:"custom_xp" db:"custom_xp"`
	IsProfilePublic          bool       `json:"is_profile_public" db:"is_profile_public"`
	AllowCloseFriendRequests bool       `json:"allow_close_friend_requests" db:"allow_close_friend_requests"`
	FollowerCount            int        `json:"follower_count" db:"follower_count"`
	CloseFriendCount         int        `json:"close_friend_count" db:"close_friend_count"`
	CreatedAt                time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at" db:"updated_at"`
}

// MaxCloseFriends caps accepted close-friend connections per user.
const MaxCloseFriends = 10

// UserStatsResponse is the slimmed-down user payload returned after
// register/login and by /auth/me.
type UserStatsResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	TotalXP   int       `json:"total_xp"`
	Level     int       `json:"level"`
	Streak    int       `json:"streak"`
	BodyXP    int       `json:"body_xp"`
	SkillsXP  int       `json:"skills_xp"`
	MindsetXP int       `json:"mindset_xp"`
	CareerXP  int       `json:"career_xp"`
	CustomXP  int       `json:"custom_xp"`
	CreatedAt time.Time `json:"created_at"`
}

// ToStatsResponse converts User to UserStatsResponse.
func (u *User) ToStatsResponse() UserStatsResponse {
	return UserStatsResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		TotalXP:   u.TotalXP,
		Level:     u.Level,
		Streak:    u.Streak,
		BodyXP:    u.BodyXP,
		SkillsXP:  u.SkillsXP,
		MindsetXP: u.MindsetXP,
		CareerXP:  u.CareerXP,
		CustomXP:  u.CustomXP,
		CreatedAt: u.CreatedAt,
	}
}

// LeaderboardEntry is one row of the XP leaderboard.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Name      string `json:"name"`
	TotalXP   int    `json:"total_xp"`
	Level     int    `json:"level"`
	BodyXP    int    `json:"body_xp"`
	SkillsXP  int    `json:"skills_xp"`
	MindsetXP int    `json:"mindset_xp"`
	CareerXP  int    `json:"career_xp"`
	Streak    int    `json:"streak"`
	IsMe      bool   `json:"is_me"`
}

// LeaderboardResponse is the full leaderboard payload including the
// caller's own rank, which is computed even when they miss the top list.
type LeaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	MyRank      int                `json:"my_rank"`
	TotalUsers  int                `json:"total_users"`
}

// PublicProfile is the full-stats profile payload for public profiles
// and owners. Private profiles viewed by others get only the name.
type PublicProfile struct {
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	TotalXP     int       `json:"total_xp"`
	Level       int       `json:"level"`
	BodyXP      int       `json:"body_xp"`
	SkillsXP    int       `json:"skills_xp"`
	MindsetXP   int       `json:"mindset_xp"`
	CareerXP    int       `json:"career_xp"`
	Streak      int       `json:"streak"`
	MemberSince time.Time `json:"member_since"`
	IsMe        bool      `json:"is_me"`
}

// UserSearchResult carries only public-safe fields.
type UserSearchResult struct {
	UserID          uuid.UUID `json:"user_id"`
	Name            string    `json:"name"`
	Level           int       `json:"level"`
	TotalXP         int       `json:"total_xp"`
	IsProfilePublic bool      `json:"is_profile_public"`
}
