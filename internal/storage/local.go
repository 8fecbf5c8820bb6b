package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/auth"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/kv"
	"golang.org/x/crypto/bcrypt"
)

// Namespace is the prefix of every local storage key. The clear-local
// operation removes everything under it except the migration marker pair.
const Namespace = "ALH_"

const (
	keyCurrentUser   = Namespace + "user"
	keyUserList      = Namespace + "users"
	keyData          = Namespace + "data"
	keyTheme         = Namespace + "theme"
	keyFontSize      = Namespace + "fontSize"
	keyNotifications = Namespace + "notifications"
	keyLanguage      = Namespace + "language"

	KeyMigrationCompleted = Namespace + "migration_completed"
	KeyMigrationDate      = Namespace + "migration_date"
)

func projectsKey(email string) string   { return Namespace + "projects_" + email }
func activitiesKey(email string) string { return Namespace + "activities_" + email }
func resourcesKey(email string) string  { return Namespace + "resources_" + email }

// localUser is the full native shape of a user in the local list. The
// password field holds a bcrypt hash; only the public fields ever leave
// this package.
type localUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// localData is the combined badges/XP blob under ALH_data.
type localData struct {
	Badges  []Badge `json:"badges"`
	XPTotal int     `json:"xp_total"`
	Level   int     `json:"level"`
}

// LocalStore persists everything as JSON under namespaced keys. Projects,
// activities and resources are scoped by the stored current user's email.
type LocalStore struct {
	store kv.Store
}

func NewLocal(store kv.Store) *LocalStore {
	return &LocalStore{store: store}
}

func (l *LocalStore) Login(email, password string) (*User, error) {
	email = auth.NormalizeEmail(email)

	var users []localUser
	if _, err := l.getJSON(keyUserList, &users); err != nil {
		return nil, err
	}

	var found *localUser
	for i := range users {
		if users[i].Email == email {
			found = &users[i]
			break
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	public := &User{Name: found.Name, Email: found.Email, Role: found.Role}
	if err := l.setJSON(keyCurrentUser, public); err != nil {
		return nil, err
	}
	return public, nil
}

func (l *LocalStore) Signup(name, email, password, role string) (*User, error) {
	email = auth.NormalizeEmail(email)
	if role == "" {
		role = "Aluno"
	}

	var users []localUser
	if _, err := l.getJSON(keyUserList, &users); err != nil {
		return nil, err
	}

	for _, u := range users {
		if u.Email == email {
			return nil, ErrConflict
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	users = append(users, localUser{Name: name, Email: email, Password: string(hash), Role: role})
	if err := l.setJSON(keyUserList, users); err != nil {
		return nil, err
	}

	public := &User{Name: name, Email: email, Role: role}
	if err := l.setJSON(keyCurrentUser, public); err != nil {
		return nil, err
	}
	return public, nil
}

func (l *LocalStore) Logout() error {
	return l.store.Remove(keyCurrentUser)
}

func (l *LocalStore) CurrentUser() (*User, error) {
	var u User
	ok, err := l.getJSON(keyCurrentUser, &u)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (l *LocalStore) SaveProject(p *Project) (*Project, error) {
	email, err := l.currentEmail()
	if err != nil {
		return nil, err
	}
	if email == "" {
		return nil, ErrUnauthenticated
	}

	var projects []Project
	if _, err := l.getJSON(projectsKey(email), &projects); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = fmt.Sprintf("proj_%d", now.UnixMilli())
		p.CreatedAt = now
		p.UpdatedAt = now
		projects = append(projects, *p)
	} else {
		idx := -1
		for i := range projects {
			if projects[i].ID == p.ID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, ErrNotFound
		}
		p.CreatedAt = projects[idx].CreatedAt
		p.UpdatedAt = now
		projects[idx] = *p
	}

	if err := l.setJSON(projectsKey(email), projects); err != nil {
		return nil, err
	}
	return p, nil
}

// Projects returns the stored list in insertion order.
func (l *LocalStore) Projects() ([]Project, error) {
	email, err := l.currentEmail()
	if err != nil || email == "" {
		return []Project{}, err
	}

	var projects []Project
	if _, err := l.getJSON(projectsKey(email), &projects); err != nil {
		return []Project{}, nil
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

func (l *LocalStore) DeleteProject(id string) error {
	email, err := l.currentEmail()
	if err != nil {
		return err
	}
	if email == "" {
		return ErrUnauthenticated
	}

	var projects []Project
	if _, err := l.getJSON(projectsKey(email), &projects); err != nil {
		return err
	}

	filtered := projects[:0]
	for _, p := range projects {
		if p.ID != id {
			filtered = append(filtered, p)
		}
	}
	return l.setJSON(projectsKey(email), filtered)
}

func (l *LocalStore) SaveActivity(a *Activity) (*Activity, error) {
	email, err := l.currentEmail()
	if err != nil {
		return nil, err
	}
	if email == "" {
		return nil, ErrUnauthenticated
	}

	var activities []Activity
	if _, err := l.getJSON(activitiesKey(email), &activities); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	// Completion timestamp is recomputed on every save.
	if a.Completed {
		a.CompletedAt = &now
	} else {
		a.CompletedAt = nil
	}

	if a.ID == "" {
		a.ID = fmt.Sprintf("act_%d", now.UnixMilli())
		a.CreatedAt = now
		activities = append(activities, *a)
	} else {
		idx := -1
		for i := range activities {
			if activities[i].ID == a.ID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, ErrNotFound
		}
		a.CreatedAt = activities[idx].CreatedAt
		activities[idx] = *a
	}

	if err := l.setJSON(activitiesKey(email), activities); err != nil {
		return nil, err
	}
	return a, nil
}

func (l *LocalStore) Activities(projectID string) ([]Activity, error) {
	email, err := l.currentEmail()
	if err != nil || email == "" {
		return []Activity{}, err
	}

	var activities []Activity
	if _, err := l.getJSON(activitiesKey(email), &activities); err != nil {
		return []Activity{}, nil
	}

	result := []Activity{}
	for _, a := range activities {
		if a.ProjectID == projectID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (l *LocalStore) SaveResource(r *Resource) (*Resource, error) {
	email, err := l.currentEmail()
	if err != nil {
		return nil, err
	}
	if email == "" {
		return nil, ErrUnauthenticated
	}

	var resources []Resource
	if _, err := l.getJSON(resourcesKey(email), &resources); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if r.ID == "" {
		r.ID = fmt.Sprintf("res_%d", now.UnixMilli())
		r.CreatedAt = now
		resources = append(resources, *r)
	} else {
		idx := -1
		for i := range resources {
			if resources[i].ID == r.ID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, ErrNotFound
		}
		r.CreatedAt = resources[idx].CreatedAt
		resources[idx] = *r
	}

	if err := l.setJSON(resourcesKey(email), resources); err != nil {
		return nil, err
	}
	return r, nil
}

func (l *LocalStore) Resources(projectID string) ([]Resource, error) {
	email, err := l.currentEmail()
	if err != nil || email == "" {
		return []Resource{}, err
	}

	var resources []Resource
	if _, err := l.getJSON(resourcesKey(email), &resources); err != nil {
		return []Resource{}, nil
	}

	result := []Resource{}
	for _, r := range resources {
		if r.ProjectID == projectID {
			result = append(result, r)
		}
	}
	return result, nil
}

// SaveBadge stores a badge once per id. Re-awarding an already earned badge
// is a silent no-op and grants no further XP in local mode.
func (l *LocalStore) SaveBadge(b *Badge) (*Badge, error) {
	var data localData
	if _, err := l.getJSON(keyData, &data); err != nil {
		return nil, err
	}

	for _, existing := range data.Badges {
		if existing.ID == b.ID {
			return b, nil
		}
	}

	b.EarnedAt = time.Now().UTC()
	data.Badges = append(data.Badges, *b)
	if err := l.setJSON(keyData, data); err != nil {
		return nil, err
	}

	if err := l.UpdateUserXP(b.XP); err != nil {
		return nil, err
	}
	return b, nil
}

func (l *LocalStore) Badges() ([]Badge, error) {
	var data localData
	if _, err := l.getJSON(keyData, &data); err != nil {
		return []Badge{}, nil
	}
	if data.Badges == nil {
		return []Badge{}, nil
	}
	return data.Badges, nil
}

func (l *LocalStore) UpdateUserXP(delta int) error {
	email, err := l.currentEmail()
	if err != nil {
		return err
	}
	if email == "" {
		return nil
	}

	var data localData
	if _, err := l.getJSON(keyData, &data); err != nil {
		return err
	}

	data.XPTotal += delta
	data.Level = data.XPTotal/100 + 1
	return l.setJSON(keyData, data)
}

func (l *LocalStore) SaveSettings(s *Settings) error {
	theme := s.Theme
	if theme == "" {
		theme = "dark"
	}
	fontSize := s.FontSize
	if fontSize == "" {
		fontSize = "medium"
	}
	language := s.Language
	if language == "" {
		language = "pt-BR"
	}

	if err := l.store.Set(keyTheme, theme); err != nil {
		return err
	}
	if err := l.store.Set(keyFontSize, fontSize); err != nil {
		return err
	}
	if err := l.store.Set(keyNotifications, strconv.FormatBool(s.Notifications.Email)); err != nil {
		return err
	}
	return l.store.Set(keyLanguage, language)
}

// Settings falls back to the default for every individually missing key.
func (l *LocalStore) Settings() (*Settings, error) {
	s := DefaultSettings()

	if v, ok, _ := l.store.Get(keyTheme); ok {
		s.Theme = v
	}
	if v, ok, _ := l.store.Get(keyFontSize); ok {
		s.FontSize = v
	}
	if v, ok, _ := l.store.Get(keyNotifications); ok {
		s.Notifications.Email = v == "true"
	}
	if v, ok, _ := l.store.Get(keyLanguage); ok {
		s.Language = v
	}
	return s, nil
}

// LogAction is a no-op in local mode; audit records are remote-only.
func (l *LocalStore) LogAction(action, entityType, entityID string, metadata map[string]any) {
}

// HasSettings reports whether any of the individual settings keys exist.
// The migration only upserts a remote settings row when at least one does.
func (l *LocalStore) HasSettings() bool {
	for _, key := range []string{keyTheme, keyFontSize, keyNotifications, keyLanguage} {
		if _, ok, _ := l.store.Get(key); ok {
			return true
		}
	}
	return false
}

func (l *LocalStore) currentEmail() (string, error) {
	u, err := l.CurrentUser()
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", nil
	}
	return u.Email, nil
}

func (l *LocalStore) getJSON(key string, v any) (bool, error) {
	raw, ok, err := l.store.Get(key)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

func (l *LocalStore) setJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return l.store.Set(key, string(b))
}
