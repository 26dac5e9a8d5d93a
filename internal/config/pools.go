package config

import (
	"fmt"
	"strings"

	"github.com/coachpo/spawnpool/internal/pool"
	"github.com/coachpo/spawnpool/internal/scene"
)

// PoolConfig declares one pool. Template defaults to Key.
type PoolConfig struct {
	Key         string `yaml:"key"`
	Template    string `yaml:"template"`
	InitialSize int    `yaml:"initialSize"`
	MaxSize     int    `yaml:"maxSize"`
	AutoExpand  *bool  `yaml:"autoExpand"`
}

func (c *PoolConfig) applyDefaults() {
	c.Key = strings.TrimSpace(c.Key)
	c.Template = strings.TrimSpace(c.Template)
	if c.Template == "" {
		c.Template = c.Key
	}
	if c.MaxSize == 0 {
		c.MaxSize = pool.DefaultMaxSize
	}
	if c.AutoExpand == nil {
		c.AutoExpand = boolPtr(pool.DefaultAutoExpand)
	}
}

// Blank keys and unknown templates are not errors here; bootstrap skips them.
func (c PoolConfig) validate() error {
	if c.InitialSize < 0 {
		return fmt.Errorf("initialSize must be >=0")
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("maxSize must be >=0")
	}
	return nil
}

// Definition resolves the template by name through lookup.
func (c PoolConfig) Definition(lookup func(name string) *scene.Template) pool.Definition {
	var tpl *scene.Template
	if lookup != nil && c.Template != "" {
		tpl = lookup(c.Template)
	}
	autoExpand := pool.DefaultAutoExpand
	if c.AutoExpand != nil {
		autoExpand = *c.AutoExpand
	}
	maxSize := c.MaxSize
	if maxSize == 0 {
		maxSize = pool.DefaultMaxSize
	}
	return pool.Definition{
		Key:         c.Key,
		Template:    tpl,
		InitialSize: c.InitialSize,
		MaxSize:     maxSize,
		AutoExpand:  autoExpand,
	}
}
