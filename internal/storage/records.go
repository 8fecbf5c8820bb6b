package storage

import "time"

// Normalized record shapes shared by both backends. The adapters map these
// to and from each backend's native shape: JSON blobs under ALH_* keys in
// local mode, GORM rows in remote mode. IDs are strings on purpose — local
// mode issues synthetic time-based ids, remote mode UUIDs.

// User is the public identity record. No password ever crosses this type.
// ID is empty in local mode, where the normalized email is the natural key.
type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type Project struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	Phases      map[string]any `json:"phases"`
	Tags        []string       `json:"tags"`
	Progress    int            `json:"progress"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type Activity struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Phase       string     `json:"phase"`
	Category    string     `json:"category"`
	ActivityKey string     `json:"activityId"`
	Title       string     `json:"title"`
	Detail      string     `json:"detail"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Notes       string     `json:"notes"`
	Attachments []string   `json:"attachments"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Badge identity is the caller-supplied ID, unique per owner. A duplicate
// award is a silent no-op, not an error.
type Badge struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"desc"`
	Icon        string         `json:"icon"`
	XP          int            `json:"xp"`
	Category    string         `json:"category"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	EarnedAt    time.Time      `json:"earnedAt"`
}

type NotificationPrefs struct {
	Email        bool `json:"email"`
	Push         bool `json:"push"`
	Nudges       bool `json:"nudges"`
	Achievements bool `json:"achievements"`
	Feedback     bool `json:"feedback"`
}

type PrivacyPrefs struct {
	ProfileVisibility      string `json:"profile_visibility"`
	ProjectsVisibility     string `json:"projects_visibility"`
	AchievementsVisibility string `json:"achievements_visibility"`
}

type Settings struct {
	Theme         string            `json:"theme"`
	FontSize      string            `json:"fontSize"`
	Language      string            `json:"language"`
	Notifications NotificationPrefs `json:"notifications"`
	Privacy       PrivacyPrefs      `json:"privacy"`
	UIPreferences map[string]any    `json:"uiPreferences,omitempty"`
}

type Resource struct {
	ID          string         `json:"id"`
	ProjectID   string         `json:"projectId"`
	Phase       string         `json:"phase"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	URL         string         `json:"url"`
	Content     string         `json:"content"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Tags        []string       `json:"tags"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// DefaultSettings are returned whenever no stored settings exist; read
// paths never fail the caller over missing settings.
func DefaultSettings() *Settings {
	return &Settings{
		Theme:    "dark",
		FontSize: "medium",
		Language: "pt-BR",
		Notifications: NotificationPrefs{
			Email:        true,
			Push:         false,
			Nudges:       true,
			Achievements: true,
			Feedback:     true,
		},
		Privacy: PrivacyPrefs{
			ProfileVisibility:      "public",
			ProjectsVisibility:     "team",
			AchievementsVisibility: "public",
		},
	}
}
