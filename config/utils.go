package config

import (
	"os"
	"path/filepath"
	"sync"
)

var (
	workspaceDir     string
	workspaceDirOnce sync.Once

	conf     Config
	confOnce sync.Once
	confErr  error
)

const (
	configFileName = "config.yaml"

	// WorkspaceEnv overrides the default ~/.codemaster workspace.
	WorkspaceEnv = "CODEMASTER_HOME"
)

func GetWorkspaceDir() string {
	workspaceDirOnce.Do(func() {
		if dir := os.Getenv(WorkspaceEnv); dir != "" {
			workspaceDir = dir
			return
		}
		home, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}
		workspaceDir = filepath.Join(home, ".codemaster")
	})

	return workspaceDir
}

func GetWorkspaceConfigPath() (string, error) {
	return filepath.Join(GetWorkspaceDir(), configFileName), nil
}

// GetConfig loads the workspace config once and returns it.
func GetConfig() (Config, error) {
	confOnce.Do(func() {
		conf, confErr = LoadConfig()
	})
	return conf, confErr
}
