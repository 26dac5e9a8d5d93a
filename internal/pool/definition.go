package pool

import (
	"strings"

	"github.com/coachpo/spawnpool/internal/scene"
)

const (
	// DefaultInitialSize is the number of instances prewarmed when a definition omits it.
	DefaultInitialSize = 0
	// DefaultMaxSize is the soft capacity used when a definition omits it.
	DefaultMaxSize = 100
	// DefaultAutoExpand is whether growth past MaxSize is expected when a definition omits it.
	DefaultAutoExpand = true
)

// Definition declares one pool.
type Definition struct {
	Key         string
	Template    *scene.Template
	InitialSize int
	MaxSize     int
	AutoExpand  bool
}

// NewDefinition returns a definition for key with the default sizing policy.
func NewDefinition(key string, template *scene.Template) Definition {
	return Definition{
		Key:         key,
		Template:    template,
		InitialSize: DefaultInitialSize,
		MaxSize:     DefaultMaxSize,
		AutoExpand:  DefaultAutoExpand,
	}
}

// Valid reports whether the definition names a key and a template.
func (d Definition) Valid() bool {
	return d.Template != nil && strings.TrimSpace(d.Key) != ""
}
