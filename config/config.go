/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package config

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	liberr "github.com/nabbar/abinder/errors"
	"github.com/nabbar/abinder/logger"
)

// ExportSpec is one apiset entry this binder process exports on a listen
// socket, decoded from viper's free-form "export" map via mapstructure.
type ExportSpec struct {
	API     string `mapstructure:"api"`
	URI     string `mapstructure:"uri"`
	Private bool   `mapstructure:"private"`
}

// ImportSpec is one remote API this binder process connects out to,
// decoded from viper's free-form "import" map.
type ImportSpec struct {
	API string `mapstructure:"api"`
	URI string `mapstructure:"uri"`
}

// Config owns one *viper.Viper instance and the set of Components reading
// from it, driving their Start/Reload/Stop in registration order (the
// teacher's topological dependency sort is not reproduced: this binder's
// components — log level, exports, imports — have no cross-dependencies to
// order, so sequential registration order is equivalent and simpler).
type Config struct {
	mu         sync.Mutex
	v          *viper.Viper
	log        logger.Logger
	ctx        context.Context
	components map[string]Component
	order      []string
	watching   bool
}

// New returns an empty Config bound to an already-populated *viper.Viper
// (file/flag parsing itself is the caller's concern, out of this package's
// scope).
func New(ctx context.Context, v *viper.Viper, log logger.Logger) *Config {
	return &Config{
		v:          v,
		log:        log,
		ctx:        ctx,
		components: make(map[string]Component),
	}
}

// Register adds comp under key, calling its Init immediately; it rejects a
// duplicate key.
func (c *Config) Register(key string, comp Component) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.components[key]; exists {
		return liberr.New(liberr.StateDuplicateDeclare, "component already registered: "+key)
	}
	comp.Init(key, c.ctx, c.get, c.log)
	c.components[key] = comp
	c.order = append(c.order, key)
	return nil
}

func (c *Config) get(key string) Component {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.components[key]
}

// Start brings up every registered component in registration order,
// aborting and leaving already-started components running on first error
// (the caller decides whether to Stop() the whole set on failure).
func (c *Config) Start() error {
	c.mu.Lock()
	order := append([]string(nil), c.order...)
	components := make(map[string]Component, len(c.components))
	for k, v := range c.components {
		components[k] = v
	}
	c.mu.Unlock()

	for _, key := range order {
		if err := components[key].Start(); err != nil {
			return liberr.New(liberr.ResAllocFailed, "component failed to start: "+key, err)
		}
	}
	return nil
}

// Stop shuts every component down in reverse registration order.
func (c *Config) Stop() {
	c.mu.Lock()
	order := append([]string(nil), c.order...)
	components := make(map[string]Component, len(c.components))
	for k, v := range c.components {
		components[k] = v
	}
	c.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		components[order[i]].Stop()
	}
}

// Reload tells every registered component to re-read its viper values.
func (c *Config) Reload() error {
	c.mu.Lock()
	order := append([]string(nil), c.order...)
	components := make(map[string]Component, len(c.components))
	for k, v := range c.components {
		components[k] = v
	}
	c.mu.Unlock()

	for _, key := range order {
		if err := components[key].Reload(); err != nil {
			return liberr.New(liberr.ResAllocFailed, "component failed to reload: "+key, err)
		}
	}
	return nil
}

// WatchReload arms fsnotify-driven hot reload on the backing config file:
// every on-disk change triggers Reload on all components, with any error
// reported through onError rather than stopping the watch.
func (c *Config) WatchReload(onError func(error)) {
	c.mu.Lock()
	if c.watching {
		c.mu.Unlock()
		return
	}
	c.watching = true
	c.mu.Unlock()

	c.v.OnConfigChange(func(e fsnotify.Event) {
		if c.log != nil {
			c.log.Info("config: file changed, reloading", "file", e.Name)
		}
		if err := c.Reload(); err != nil && onError != nil {
			onError(err)
		}
	})
	c.v.WatchConfig()
}

// ExportSpecs decodes the "export" map under key into a list of ExportSpec.
func (c *Config) ExportSpecs(key string) ([]ExportSpec, error) {
	var out []ExportSpec
	if err := decodeSub(c.v, key+".export", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ImportSpecs decodes the "import" map under key into a list of ImportSpec.
func (c *Config) ImportSpecs(key string) ([]ImportSpec, error) {
	var out []ImportSpec
	if err := decodeSub(c.v, key+".import", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeSub(v *viper.Viper, path string, out interface{}) error {
	raw := v.Get(path)
	if raw == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return liberr.New(liberr.ArgInvalidValue, "cannot build mapstructure decoder", err)
	}
	if err := dec.Decode(raw); err != nil {
		return liberr.New(liberr.ArgInvalidValue, "cannot decode config section: "+path, err)
	}
	return nil
}
