// Package lockfile keeps a single interactive browser per data root, so two
// browsers never race on the scrape cache or the history database.
package lockfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	friendlyerrors "iconscrape/internal/errors"
)

// Name is the lock file created inside general.data_root.
const Name = "tui.lock"

// ErrInUse is wrapped by the error returned when a live browser holds the lock.
var ErrInUse = errors.New("data root in use")

// errStale means a lock left by a dead process was removed.
var errStale = errors.New("stale lock removed")

// Owner is what a lock file records about the browser holding it.
type Owner struct {
	PID     int
	Started time.Time
}

// Lock is held by the running browser until Release.
type Lock struct {
	path  string
	file  *os.File
	owner Owner
}

// ForDataRoot takes the browser lock of dataRoot. A lock whose process is
// gone is replaced once.
func ForDataRoot(dataRoot string) (*Lock, error) {
	path := filepath.Join(dataRoot, Name)
	l, err := Acquire(path)
	if errors.Is(err, errStale) {
		return Acquire(path)
	}
	return l, err
}

// Acquire creates the lock file at path exclusively and records the current
// process in it.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, checkHolder(path)
		}
		return nil, friendlyerrors.PathError(filepath.Dir(path), err)
	}
	owner := Owner{PID: os.Getpid(), Started: time.Now().UTC().Truncate(time.Second)}
	if _, err := fmt.Fprintf(f, "pid=%d\nstarted=%s\n", owner.PID, owner.Started.Format(time.RFC3339)); err == nil {
		err = f.Sync()
	}
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("write lock %s: %w", path, err)
	}
	return &Lock{path: path, file: f, owner: owner}, nil
}

// checkHolder reports a live holder, or removes the lock of a dead one and
// returns errStale.
func checkHolder(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return friendlyerrors.NewFriendlyError(
			"Cannot read the browser lock "+path,
			"If no iconscrape browser is open, remove it: rm "+path,
		).WithDetails(err)
	}
	owner, err := parseOwner(b)
	if err != nil {
		return friendlyerrors.NewFriendlyError(
			"The browser lock "+path+" is damaged",
			"If no iconscrape browser is open, remove it: rm "+path,
		).WithDetails(err)
	}
	if pidAlive(owner.PID) {
		since := ""
		if !owner.Started.IsZero() {
			since = ", opened " + humanize.Time(owner.Started)
		}
		return friendlyerrors.NewFriendlyError(
			fmt.Sprintf("Another iconscrape browser is open on %s (PID %d%s)", filepath.Dir(path), owner.PID, since),
			"Close it, or start this one with a config that uses a different general.data_root.\n"+
				"If no browser is open, remove the lock: rm "+path,
		).WithDetails(ErrInUse)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove stale lock %s (PID %d is gone): %w", path, owner.PID, err)
	}
	return errStale
}

// parseOwner reads "key=value" lines; pid is required.
func parseOwner(b []byte) (Owner, error) {
	var o Owner
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		k, v, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		switch k {
		case "pid":
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return Owner{}, fmt.Errorf("invalid pid %q", v)
			}
			o.PID = n
		case "started":
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				o.Started = t
			}
		}
	}
	if o.PID == 0 {
		return Owner{}, errors.New("no pid recorded")
	}
	return o, nil
}

// pidAlive probes pid with signal 0. A permission error still means the
// process exists.
func pidAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = p.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return !errors.Is(err, syscall.ESRCH) && !errors.Is(err, os.ErrProcessDone)
}

// Owner returns what this lock recorded about the current process.
func (l *Lock) Owner() Owner { return l.owner }

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release closes and removes the lock file. Calling it twice is harmless.
func (l *Lock) Release() error {
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock %s: %w", l.path, err)
	}
	return nil
}
