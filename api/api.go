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

package api

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	xslices "golang.org/x/exp/slices"

	"github.com/nabbar/abinder/auth"
	liberr "github.com/nabbar/abinder/errors"
	"github.com/nabbar/abinder/logger"
	"github.com/nabbar/abinder/logger/mask"
	"github.com/nabbar/abinder/match"
	"github.com/nabbar/abinder/request"
)

var (
	validate     = validator.New()
	validateOnce sync.Once
)

// bannedNameChars are the punctuation bytes an api/verb name may never
// contain, on top of control characters and DEL (checked separately so
// they don't have to be spelled out byte by byte here).
const bannedNameChars = "\"#%&'/?`"

func registerNameValidation() {
	_ = validate.RegisterValidation("apiname", func(fl validator.FieldLevel) bool {
		return validName(fl.Field().String())
	})
}

// validName requires name to start with a visible ASCII character and to
// carry no control character, DEL, or banned punctuation anywhere in it.
func validName(name string) bool {
	if name == "" {
		return false
	}
	if name[0] <= 0x20 || name[0] >= 0x7f {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < 0x20 || name[i] == 0x7f {
			return false
		}
	}
	return !strings.ContainsAny(name, bannedNameChars)
}

// ValidateName reports whether name is an acceptable API or verb name
// (spec.md says nothing beyond "named"; this rejects path/query/control
// characters a URI or wire frame could not carry unescaped).
func ValidateName(name string) error {
	validateOnce.Do(registerNameValidation)
	if err := validate.Var(name, "required,apiname"); err != nil {
		return liberr.New(liberr.ArgInvalidName, "invalid api/verb name: "+name, err)
	}
	return nil
}

// ControlEvent identifies which control callback phase is firing.
type ControlEvent uint8

const (
	PreInit ControlEvent = iota
	Init
	RootEntry
	Exiting
)

// ControlCallback is the API lifecycle hook (spec.md §6.1's binding ABI).
type ControlCallback func(a *API, ev ControlEvent) error

// OrphanEventCallback receives a broadcast that matched none of this API's
// event handlers (spec.md §9, mandatory rather than a silent drop).
type OrphanEventCallback func(name string, r *request.Request)

// API is one named entry of an apiset: its verb table, control callback,
// log mask, concurrency policy and class tags.
type API struct {
	Name string
	Info string
	Path string

	mu          sync.RWMutex
	staticVerbs []*Verb
	dynVerbs    []*Verb
	dynDirty    bool

	sealed bool

	Control ControlCallback
	UserData interface{}

	Mask *mask.Mask
	log  logger.Logger

	// NoConcurrency serializes all invocations of this API on its own
	// pointer as the scheduling group key (spec.md §4.5).
	NoConcurrency bool

	Provides []string
	Requires []string

	orphan OrphanEventCallback
}

// New creates an API, rejecting an invalid name immediately.
func New(name, info, path string, logLvl logger.Logger) (*API, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &API{
		Name: name,
		Info: info,
		Path: path,
		Mask: mask.New(0),
		log:  logLvl,
	}, nil
}

// AddStaticVerb registers an immutable verb; it fails once the API is
// sealed or the name is already taken by another static verb.
func (a *API) AddStaticVerb(v *Verb) error {
	if err := ValidateName(v.Name); err != nil && !v.Glob {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sealed {
		return liberr.New(liberr.StateSealed, "api sealed: cannot add static verb")
	}
	for _, existing := range a.staticVerbs {
		if existing.Name == v.Name {
			return liberr.New(liberr.StateVerbExists, "static verb already exists: "+v.Name)
		}
	}
	a.staticVerbs = append(a.staticVerbs, v)
	return nil
}

// AddDynamicVerb adds a verb to the lazily-sorted dynamic table; dynamic
// verbs may only be added/removed while the API is not sealed.
func (a *API) AddDynamicVerb(v *Verb) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sealed {
		return liberr.New(liberr.StateSealed, "api sealed: cannot add dynamic verb")
	}
	for _, existing := range a.dynVerbs {
		if existing.Name == v.Name {
			return liberr.New(liberr.StateVerbExists, "dynamic verb already exists: "+v.Name)
		}
	}
	a.dynVerbs = append(a.dynVerbs, v)
	a.dynDirty = true
	return nil
}

// RemoveDynamicVerb removes a previously added dynamic verb by name.
func (a *API) RemoveDynamicVerb(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sealed {
		return liberr.New(liberr.StateSealed, "api sealed: cannot remove dynamic verb")
	}
	for i, existing := range a.dynVerbs {
		if existing.Name == name {
			a.dynVerbs = append(a.dynVerbs[:i], a.dynVerbs[i+1:]...)
			return nil
		}
	}
	return liberr.New(liberr.ResNotFound, "dynamic verb not found: "+name)
}

func (a *API) sortDynLocked() {
	if !a.dynDirty {
		return
	}
	xslices.SortFunc(a.dynVerbs, func(x, y *Verb) int { return match.Compare(x.Name, y.Name) })
	a.dynDirty = false
}

// MatchVerb resolves name to a Verb, per spec.md §4.5's tie-break: dynamic
// verbs (binary-searched) are tried first, static verbs (linear scan with
// glob fallback) second.
func (a *API) MatchVerb(name string) (*Verb, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sortDynLocked()
	if i, ok := sort.Find(len(a.dynVerbs), func(i int) int { return match.Compare(name, a.dynVerbs[i].Name) }); ok {
		return a.dynVerbs[i], true
	}

	var globHit *Verb
	for _, v := range a.staticVerbs {
		if !v.Glob && v.Name == name {
			return v, true
		}
	}
	for _, v := range a.staticVerbs {
		if v.Glob && match.Match(v.Name, name) {
			globHit = v
			break
		}
	}
	if globHit != nil {
		return globHit, true
	}
	return nil, false
}

// Seal freezes the verb tables, first checking every declared Requires
// class against the caller-supplied provided predicate (supplemented from
// the original's afb-api-v4.c class mechanism). A nil predicate skips the
// check; whether the providing API is sealed is up to the predicate.
func (a *API) Seal(provided func(class string) bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sealed {
		return nil
	}
	for _, req := range a.Requires {
		if provided != nil && !provided(req) {
			return liberr.New(liberr.StateSealed, "api "+a.Name+" requires unmet class: "+req)
		}
	}
	a.sortDynLocked()
	a.sealed = true
	return nil
}

func (a *API) Sealed() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sealed
}

// ProvidesClass reports whether a seals with class among its Provides tags.
func (a *API) ProvidesClass(class string) bool {
	for _, p := range a.Provides {
		if p == class {
			return true
		}
	}
	return false
}

// SetOrphanEventHandler installs the handler invoked for a broadcast that
// matched none of this API's event patterns.
func (a *API) SetOrphanEventHandler(fn OrphanEventCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.orphan = fn
}

func (a *API) OrphanEvent(name string, r *request.Request) {
	a.mu.RLock()
	fn := a.orphan
	a.mu.RUnlock()
	if fn != nil {
		fn(name, r)
	}
}

// Invoke runs the control callback for ev, if one is installed.
func (a *API) Invoke(ev ControlEvent) error {
	if a.Control == nil {
		return nil
	}
	return a.Control(a, ev)
}

// Dispatch resolves name against MatchVerb, evaluates its auth tree against
// r's session/token, and on success invokes the verb callback — exactly
// spec.md §4.5 steps 2-5, minus the permission engine wiring which the
// caller supplies via checker.
func (a *API) Dispatch(ctx context.Context, name string, r *request.Request, checker auth.Checker) error {
	v, ok := a.MatchVerb(name)
	if !ok {
		r.Reply(-1, nil)
		return liberr.New(liberr.ArgInvalidVerb, "verb unknown: "+name)
	}

	hasToken := r.Token != nil
	ok2, err := auth.Evaluate(ctx, v.Auth, r.Session, r.Token, v.LOAKey, hasToken, checker)
	if err != nil {
		r.Reply(-1, nil)
		return err
	}
	if !ok2 {
		r.Reply(-1, nil)
		return liberr.New(liberr.PermDenied, "permission denied for verb: "+name)
	}

	v.Callback(r, v.Closure)
	return nil
}
