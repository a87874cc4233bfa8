package store

import (
	"database/sql"
	"fmt"
)

// Settings keys.
const (
	settingUserProfile        = "user_profile"
	settingProjectConstraints = "project_constraints"
)

// AssistantSettings carries the free-text profile and constraints the
// assistant folds into every system context.
type AssistantSettings struct {
	UserProfile        string `json:"userProfile"`
	ProjectConstraints string `json:"projectConstraints"`
}

// GetSettings loads the assistant settings. Missing keys come back empty.
func (s *LocalStore) GetSettings() (AssistantSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out AssistantSettings
	var err error
	if out.UserProfile, err = s.settingLocked(settingUserProfile); err != nil {
		return AssistantSettings{}, err
	}
	if out.ProjectConstraints, err = s.settingLocked(settingProjectConstraints); err != nil {
		return AssistantSettings{}, err
	}
	return out, nil
}

// PutSettings rewrites the assistant settings.
func (s *LocalStore) PutSettings(settings AssistantSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.putSettingLocked(settingUserProfile, settings.UserProfile); err != nil {
		return err
	}
	return s.putSettingLocked(settingProjectConstraints, settings.ProjectConstraints)
}

func (s *LocalStore) settingLocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load setting %s: %w", key, err)
	}
	return value, nil
}

func (s *LocalStore) putSettingLocked(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}
	return nil
}
