package shared

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestDefaultUserInfoCreatesDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	info := NewDefaultUserInfo(fs)

	for name, fn := range map[string]func() (string, error){
		"config": info.ConfigDir,
		"data":   info.DataDir,
		"log":    info.LogDir,
	} {
		dir, err := fn()
		if err != nil {
			t.Fatalf("%s dir: %v", name, err)
		}
		if filepath.Base(dir) != AppName {
			t.Errorf("%s dir = %q, want it to end in %q", name, dir, AppName)
		}
		exists, err := afero.DirExists(fs, dir)
		if err != nil || !exists {
			t.Errorf("%s dir %q was not created", name, dir)
		}
	}
}
