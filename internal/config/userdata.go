package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// UserData holds per-user state remembered between sessions
type UserData struct {
	// LastPaths maps a server identity (base URL or bucket) to the last
	// directory browsed on it.
	LastPaths     map[string]string `json:"last_paths"`
	LastUploadDir string            `json:"last_upload_dir"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	path          string
}

// LoadUserData loads user data from user.data in the config directory.
// Missing or unreadable files yield empty defaults.
func LoadUserData() (*UserData, error) {
	userDataPath, err := getUserDataPath()
	if err != nil {
		return createDefaultUserData(""), nil
	}
	return loadUserDataFrom(userDataPath), nil
}

func loadUserDataFrom(userDataPath string) *UserData {
	data, err := os.ReadFile(userDataPath)
	if err != nil {
		return createDefaultUserData(userDataPath)
	}

	var userData UserData
	if err := json.Unmarshal(data, &userData); err != nil {
		return createDefaultUserData(userDataPath)
	}
	if userData.LastPaths == nil {
		userData.LastPaths = map[string]string{}
	}
	userData.path = userDataPath
	return &userData
}

// SaveUserData writes user data back to disk
func (ud *UserData) SaveUserData() error {
	if ud.path == "" {
		p, err := getUserDataPath()
		if err != nil {
			return err
		}
		ud.path = p
	}

	ud.UpdatedAt = time.Now()
	if ud.CreatedAt.IsZero() {
		ud.CreatedAt = ud.UpdatedAt
	}

	data, err := json.MarshalIndent(ud, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(ud.path, data, 0600)
}

// LastPath returns the last browsed directory for a server.
func (ud *UserData) LastPath(server string) string {
	return ud.LastPaths[server]
}

// SetLastPath records the last browsed directory and saves to file
func (ud *UserData) SetLastPath(server, path string) error {
	if ud.LastPaths == nil {
		ud.LastPaths = map[string]string{}
	}
	ud.LastPaths[server] = path
	return ud.SaveUserData()
}

// SetLastUploadDir remembers the local directory of the last upload
func (ud *UserData) SetLastUploadDir(dir string) error {
	ud.LastUploadDir = dir
	return ud.SaveUserData()
}

func createDefaultUserData(path string) *UserData {
	now := time.Now()
	return &UserData{
		LastPaths: map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
		path:      path,
	}
}

// getUserDataPath returns the path to the user.data file
func getUserDataPath() (string, error) {
	configDir := GetConfigDir()
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "user.data"), nil
}
