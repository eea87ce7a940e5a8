// Package meeting generates externally joinable meeting-room links.
package meeting

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Rrens/meeting-buddy/internal/config"
)

// Linker builds room URLs of the form <base>/<namespace><unix-ms><random>
type Linker struct {
	baseURL   string
	namespace string
	now       func() time.Time
	random    func() string
}

// NewLinker creates a linker from configuration
func NewLinker(cfg config.MeetingConfig) *Linker {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://meet.jit.si"
	}
	return &Linker{
		baseURL:   base,
		namespace: cfg.Namespace,
		now:       time.Now,
		random: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		},
	}
}

// Link returns a fresh room URL
func (l *Linker) Link() string {
	return fmt.Sprintf("%s/%s%d%s", l.baseURL, l.namespace, l.now().UnixMilli(), l.random())
}
