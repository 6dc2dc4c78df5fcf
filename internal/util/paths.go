package util

import (
	"fmt"
	"net/url"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"
)

// EntryBase makes a query usable as the base of an archive entry name.
// Path separators become '-' so every entry stays at the archive root;
// everything else, spaces and unicode included, is kept as typed.
func EntryBase(query string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\':
			return '-'
		}
		return r
	}, query)
}

// URLPathBase extracts the last element of the URL path, ignoring query and fragment.
// It falls back to "icon" when nothing usable remains.
func URLPathBase(u string) string {
	s := strings.TrimSpace(u)
	if s == "" {
		return "icon"
	}
	if pu, err := url.Parse(s); err == nil && pu != nil {
		b := pathpkg.Base(pu.Path)
		if b != "" && b != "/" && b != "." {
			return b
		}
		return "icon"
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	b := filepath.Base(s)
	if b == "" || b == "/" || b == "." {
		return "icon"
	}
	return b
}

// UniquePath returns a path inside dir for base that does not exist yet.
// Taken names get numeric suffixes before the extension: "a.zip", "a (2).zip", ...
func UniquePath(dir, base string) (string, error) {
	base = strings.TrimSpace(filepath.Base(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", base)
	}
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	path := filepath.Join(dir, base)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", err
	}
	for i := 2; ; i++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", name, i, ext))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand, nil
		}
	}
}
