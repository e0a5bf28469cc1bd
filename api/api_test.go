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

package api_test

import (
	"context"
	"testing"

	"github.com/nabbar/abinder/api"
	"github.com/nabbar/abinder/auth"
	"github.com/nabbar/abinder/credential"
	"github.com/nabbar/abinder/request"
)

func TestNew_RejectsInvalidName(t *testing.T) {
	if _, err := api.New("bad name/slash", "", "", nil); err == nil {
		t.Fatalf("expected error for invalid api name")
	}
}

func TestAddStaticVerb_DuplicateRejected(t *testing.T) {
	a, err := api.New("greeter", "", "", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v := &api.Verb{Name: "hello", Auth: auth.YesAuth(), Callback: func(r *request.Request, c interface{}) {}}
	if err := a.AddStaticVerb(v); err != nil {
		t.Fatalf("first AddStaticVerb: %v", err)
	}
	if err := a.AddStaticVerb(v); err == nil {
		t.Fatalf("expected duplicate static verb to be rejected")
	}
}

func TestMatchVerb_DynamicBeatsStatic(t *testing.T) {
	a, _ := api.New("greeter", "", "", nil)
	called := ""
	_ = a.AddStaticVerb(&api.Verb{Name: "ping", Auth: auth.YesAuth(), Callback: func(r *request.Request, c interface{}) { called = "static" }})
	_ = a.AddDynamicVerb(&api.Verb{Name: "ping", Auth: auth.YesAuth(), Callback: func(r *request.Request, c interface{}) { called = "dynamic" }})

	v, ok := a.MatchVerb("ping")
	if !ok {
		t.Fatalf("expected ping to match")
	}
	v.Callback(nil, v.Closure)
	if called != "dynamic" {
		t.Fatalf("expected dynamic verb to win the tie-break, got %q", called)
	}
}

func TestMatchVerb_StaticGlobFallback(t *testing.T) {
	a, _ := api.New("greeter", "", "", nil)
	_ = a.AddStaticVerb(&api.Verb{Name: "admin/*", Glob: true, Auth: auth.YesAuth(), Callback: func(r *request.Request, c interface{}) {}})

	if _, ok := a.MatchVerb("admin/reload"); !ok {
		t.Fatalf("expected glob verb to match admin/reload")
	}
	if _, ok := a.MatchVerb("unrelated"); ok {
		t.Fatalf("expected no match for unrelated verb name")
	}
}

func TestSeal_BlocksFurtherVerbs(t *testing.T) {
	a, _ := api.New("greeter", "", "", nil)
	if err := a.Seal(nil); err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if err := a.AddStaticVerb(&api.Verb{Name: "late", Auth: auth.YesAuth()}); err == nil {
		t.Fatalf("expected AddStaticVerb to fail after seal")
	}
}

func TestSeal_RequiresUnmetClassFails(t *testing.T) {
	a, _ := api.New("greeter", "", "", nil)
	a.Requires = []string{"storage"}
	if err := a.Seal(func(class string) bool { return false }); err == nil {
		t.Fatalf("expected seal to fail on unmet required class")
	}
	if err := a.Seal(func(class string) bool { return true }); err != nil {
		t.Fatalf("expected seal to succeed once class is provided: %v", err)
	}
}

func TestDispatch_DeniesWithoutPermission(t *testing.T) {
	a, _ := api.New("greeter", "", "", nil)
	invoked := false
	_ = a.AddStaticVerb(&api.Verb{
		Name: "secret",
		Auth: auth.RequirePermission("must-have"),
		Callback: func(r *request.Request, c interface{}) {
			invoked = true
		},
	})

	req := request.New("greeter", "secret", nil, nil, nil, nil, nil, nil)
	err := a.Dispatch(context.Background(), "secret", req, denyAllChecker{})
	if err == nil {
		t.Fatalf("expected dispatch to fail when permission is denied")
	}
	if invoked {
		t.Fatalf("expected verb callback not to run when denied")
	}
}

type denyAllChecker struct{}

func (denyAllChecker) CheckPermission(ctx context.Context, session *credential.Session, token *credential.Token, text string) (bool, error) {
	return false, nil
}
