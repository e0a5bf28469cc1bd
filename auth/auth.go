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

// Package auth is the verb auth tree (spec.md §3's Auth node entity): a
// finite tagged-union tree evaluated with short-circuit semantics.
package auth

import (
	"context"

	"github.com/nabbar/abinder/credential"
	"github.com/nabbar/abinder/permission"
)

// Kind discriminates a Node's tagged union.
type Kind uint8

const (
	No Kind = iota
	Yes
	TokenKind
	LOA
	Permission
	And
	Or
	Not
)

// Node is one node of an auth tree. Only the fields relevant to Kind are
// used; the zero value of the rest is ignored.
type Node struct {
	Kind Kind

	LOALevel uint8
	Text     string

	First *Node
	Next  *Node
}

func NoAuth() *Node  { return &Node{Kind: No} }
func YesAuth() *Node { return &Node{Kind: Yes} }
func RequireToken() *Node { return &Node{Kind: TokenKind} }
func RequireLOA(level uint8) *Node { return &Node{Kind: LOA, LOALevel: level} }
func RequirePermission(text string) *Node { return &Node{Kind: Permission, Text: text} }
func NodeAnd(first, next *Node) *Node { return &Node{Kind: And, First: first, Next: next} }
func NodeOr(first, next *Node) *Node  { return &Node{Kind: Or, First: first, Next: next} }
func NodeNot(first *Node) *Node       { return &Node{Kind: Not, First: first} }

// Checker resolves the "Permission(text)" leaf by delegating to the
// permission engine; Evaluate is otherwise pure tree recursion.
type Checker interface {
	CheckPermission(ctx context.Context, session *credential.Session, token *credential.Token, text string) (bool, error)
}

// LOAKey is the api-cookie-key a session's LOA is read under when
// evaluating a LOA node.
type LOAKey string

// Evaluate walks n with short-circuit semantics, returning whether the
// tree is satisfied for the given session/token.
func Evaluate(ctx context.Context, n *Node, session *credential.Session, token *credential.Token, loaKey LOAKey, hasToken bool, checker Checker) (bool, error) {
	if n == nil {
		return true, nil
	}
	switch n.Kind {
	case No:
		return false, nil
	case Yes:
		return true, nil
	case TokenKind:
		return hasToken, nil
	case LOA:
		if session == nil {
			return n.LOALevel == 0, nil
		}
		return session.LOA(string(loaKey)) >= n.LOALevel, nil
	case Permission:
		if checker == nil {
			return false, nil
		}
		return checker.CheckPermission(ctx, session, token, n.Text)
	case And:
		ok, err := Evaluate(ctx, n.First, session, token, loaKey, hasToken, checker)
		if err != nil || !ok {
			return false, err
		}
		return Evaluate(ctx, n.Next, session, token, loaKey, hasToken, checker)
	case Or:
		ok, err := Evaluate(ctx, n.First, session, token, loaKey, hasToken, checker)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		return Evaluate(ctx, n.Next, session, token, loaKey, hasToken, checker)
	case Not:
		ok, err := Evaluate(ctx, n.First, session, token, loaKey, hasToken, checker)
		if err != nil {
			return false, err
		}
		return !ok, nil
	default:
		return false, nil
	}
}

// PermissionEngineChecker adapts a *permission.Engine to the Checker
// interface, routing unresolved status/error into "denied".
type PermissionEngineChecker struct {
	Engine *permission.Engine
	Client string
	User   string
}

func (c *PermissionEngineChecker) CheckPermission(ctx context.Context, session *credential.Session, token *credential.Token, text string) (bool, error) {
	d, err := c.Engine.Check(ctx, c.Client, c.User, session, token, text)
	if err != nil {
		return false, err
	}
	return d == permission.Granted, nil
}
