package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const defaultAPIURL = "http://localhost:8080"
const credentialsFileName = ".proxication_credentials"

// Credentials is the locally stored access/refresh pair from the last login.
type Credentials struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// APIURL returns the base URL for the Proxication POI API.
// It can be overridden with the PROXICATION_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("PROXICATION_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

func credentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, credentialsFileName), nil
}

// SaveCredentials stores the token pair for subsequent CLI commands.
func SaveCredentials(creds Credentials) error {
	path, err := credentialsPath()
	if err != nil {
		return err
	}
	b, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0600)
}

// ReadCredentials returns the locally stored token pair.
func ReadCredentials() (Credentials, error) {
	var creds Credentials
	path, err := credentialsPath()
	if err != nil {
		return creds, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return creds, err
	}
	err = json.Unmarshal(b, &creds)
	return creds, err
}

// ClearCredentials removes the locally stored token pair. Missing file is not an error.
func ClearCredentials() error {
	path, err := credentialsPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
