package model

import (
	"path/filepath"
	"strings"
)

// Path represents a file system path.
type Path string

// String implements fmt.Stringer.
func (p Path) String() string {
	return string(p)
}

// BackupPath returns the sibling path used to stage a backup copy of p.
// The extension of p is replaced by ".bak" ("calc.go" -> "calc.bak").
func (p Path) BackupPath() Path {
	s := string(p)
	ext := filepath.Ext(s)

	return Path(strings.TrimSuffix(s, ext) + ".bak")
}
