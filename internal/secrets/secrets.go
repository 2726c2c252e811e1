// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves the NCBI credentials. The process environment
// wins, then a .env file, then a directory of plain-text key files where the
// filename is the key name and the trimmed contents are the value.
//
// Supported key files: ncbi-api-key, ncbi-email.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Key file names inside the secrets directory.
const (
	APIKeyFile = "ncbi-api-key"
	EmailFile  = "ncbi-email"
)

// ErrMissingAPIKey is returned when no source provides an API key.
var ErrMissingAPIKey = errors.New("NCBI API key not found: set NCBI_API_KEY, add it to .env, or write .secrets/" + APIKeyFile)

// Credentials identify the caller to NCBI.
type Credentials struct {
	APIKey string `env:"NCBI_API_KEY"`
	Email  string `env:"NCBI_EMAIL"`
}

// Sources says where Resolve looks. Empty fields are skipped.
type Sources struct {
	EnvFile    string
	SecretsDir string
}

// Resolve gathers credentials from every source and fails with
// ErrMissingAPIKey when none supplies an API key. A missing .env file or
// secrets directory is not an error.
func Resolve(src Sources) (Credentials, error) {
	if src.EnvFile != "" {
		if err := godotenv.Load(src.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, fmt.Errorf("loading %s: %w", src.EnvFile, err)
		}
	}

	var creds Credentials
	if err := env.Parse(&creds); err != nil {
		return Credentials{}, fmt.Errorf("parsing environment: %w", err)
	}

	if src.SecretsDir != "" && (creds.APIKey == "" || creds.Email == "") {
		files, err := Load(src.SecretsDir)
		if err != nil {
			return Credentials{}, err
		}
		if creds.APIKey == "" {
			creds.APIKey = files[APIKeyFile]
		}
		if creds.Email == "" {
			creds.Email = files[EmailFile]
		}
	}

	if creds.APIKey == "" {
		return Credentials{}, ErrMissingAPIKey
	}
	return creds, nil
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
