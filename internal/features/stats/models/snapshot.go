package models

import "time"

// Snapshot sources.
const (
	SourceNative   = "native"
	SourceFallback = "fallback"
)

// Snapshot is the best-available channel statistics for a single request.
// Nil fields could not be collected; the snapshot is never persisted here.
type Snapshot struct {
	Title       *string `json:"title"`
	Username    *string `json:"username"`
	Description *string `json:"description"`
	Verified    bool    `json:"verified"`

	Subscribers   *int `json:"subscribers"`
	AdminsCount   *int `json:"admins_count"`
	MembersOnline *int `json:"members_online"`
	PostsCount    *int `json:"posts_count"`

	AvgViews                    *int     `json:"avg_views"`
	Growth                      *int     `json:"growth"`
	ViewsPerPost                *float64 `json:"views_per_post"`
	SharesPerPost               *float64 `json:"shares_per_post"`
	EnabledNotificationsPercent *float64 `json:"enabled_notifications_percent"`
	ERPercent                   *float64 `json:"er_percent"`

	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}
