// pkg/interact/snapshot.go
package interact

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/pkg/browser"
)

// snapshotStamp gives second resolution; the label keeps two captures taken
// in the same second from colliding.
const snapshotStamp = "20060102_150405"

// Snapshot is a diagnostic artifact: a visual record of page state at
// failure time. Created once, never mutated.
type Snapshot struct {
	Path    string
	Label   string
	TakenAt time.Time
}

// Snapshotter captures failure screenshots into a configured directory with
// deterministic names.
type Snapshotter struct {
	driver   browser.Driver
	logger   *zap.Logger
	dir      string
	fullPage bool

	// now is swappable for tests.
	now func() time.Time
}

// NewSnapshotter creates a Snapshotter writing into dir.
func NewSnapshotter(driver browser.Driver, dir string, logger *zap.Logger) *Snapshotter {
	return &Snapshotter{
		driver:   driver,
		logger:   logger.Named("snapshot"),
		dir:      dir,
		fullPage: true,
		now:      time.Now,
	}
}

// Capture takes a screenshot labeled for the failure that triggered it.
// The filename combines the sanitized label and a second-resolution
// timestamp.
func (s *Snapshotter) Capture(ctx context.Context, label string) (Snapshot, error) {
	takenAt := s.now()
	name := fmt.Sprintf("%s_%s.png", sanitizeLabel(label), takenAt.Format(snapshotStamp))
	path := filepath.Join(s.dir, name)

	if err := s.driver.Screenshot(ctx, path, s.fullPage); err != nil {
		return Snapshot{}, fmt.Errorf("capturing snapshot %q: %w", label, err)
	}

	snap := Snapshot{Path: path, Label: label, TakenAt: takenAt}
	s.logger.Info("Diagnostic snapshot captured.", zap.String("path", path), zap.String("label", label))
	return snap, nil
}

// sanitizeLabel maps an arbitrary label (often a CSS selector) to a safe
// filename fragment.
func sanitizeLabel(label string) string {
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "snapshot"
	}
	const maxLabel = 80
	if len(out) > maxLabel {
		out = out[:maxLabel]
	}
	return out
}
