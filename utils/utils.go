// Package utils contains small path helpers shared by the commands.
package utils

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// ExpandPath expands tilde and all environment variables from the given
// path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// AbsPath expands path and makes it absolute. It returns the expanded path
// unchanged if the working directory cannot be determined.
func AbsPath(path string) string {
	p := ExpandPath(path)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
