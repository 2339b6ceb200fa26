package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

const AppName = "ml-commons"

type UserInfo interface {
	HomeDir() (string, error)
	ConfigDir() (string, error)
	DataDir() (string, error)
	LogDir() (string, error)
	RuntimeDir() (string, error)
}

type DefaultUserInfo struct {
	fs afero.Fs
}

var _ UserInfo = (*DefaultUserInfo)(nil)

func NewDefaultUserInfo(fs afero.Fs) *DefaultUserInfo {
	return &DefaultUserInfo{fs: fs}
}

func (u *DefaultUserInfo) HomeDir() (string, error) {
	return os.UserHomeDir()
}

func (u *DefaultUserInfo) ConfigDir() (string, error) {
	return u.ensure(filepath.Join(xdg.ConfigHome, AppName), "config")
}

func (u *DefaultUserInfo) DataDir() (string, error) {
	return u.ensure(filepath.Join(xdg.DataHome, AppName), "data")
}

func (u *DefaultUserInfo) LogDir() (string, error) {
	logDir := filepath.Join(xdg.StateHome, AppName)
	if runtime.GOOS == "darwin" {
		homeDir, err := u.HomeDir()
		if err != nil {
			return "", err
		}
		logDir = filepath.Join(homeDir, "Library", "Logs", AppName)
	}
	return u.ensure(logDir, "log")
}

func (u *DefaultUserInfo) RuntimeDir() (string, error) {
	return u.ensure(filepath.Join(xdg.RuntimeDir, AppName), "runtime")
}

func (u *DefaultUserInfo) ensure(dir, kind string) (string, error) {
	if err := u.fs.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", kind, err)
	}
	return dir, nil
}
