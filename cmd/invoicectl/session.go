package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"invoicing-cloud/internal/billingclient"
)

var errNotLoggedIn = errors.New("not logged in; run `invoicectl login` first")

// sessionFile is the on-disk form of a login.
type sessionFile struct {
	Server  string                `yaml:"server"`
	Session billingclient.Session `yaml:"session"`
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".invoicectl-session.yaml"
	}
	return filepath.Join(dir, "invoicectl", "session.yaml")
}

func loadSession(path string) (sessionFile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return sessionFile{}, errNotLoggedIn
	}
	if err != nil {
		return sessionFile{}, fmt.Errorf("read session: %w", err)
	}
	var sf sessionFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return sessionFile{}, fmt.Errorf("parse session: %w", err)
	}
	if !sf.Session.Valid() {
		return sessionFile{}, errNotLoggedIn
	}
	return sf, nil
}

func saveSession(path string, sf sessionFile) error {
	data, err := yaml.Marshal(sf)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func clearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
