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

package auth_test

import (
	"context"
	"testing"

	"github.com/nabbar/abinder/auth"
)

func TestEvaluate_YesNo(t *testing.T) {
	ok, err := auth.Evaluate(context.Background(), auth.YesAuth(), nil, nil, "", false, nil)
	if err != nil || !ok {
		t.Fatalf("expected Yes to satisfy, got %v %v", ok, err)
	}
	ok, err = auth.Evaluate(context.Background(), auth.NoAuth(), nil, nil, "", false, nil)
	if err != nil || ok {
		t.Fatalf("expected No to never satisfy, got %v %v", ok, err)
	}
}

func TestEvaluate_NilIsSatisfied(t *testing.T) {
	ok, err := auth.Evaluate(context.Background(), nil, nil, nil, "", false, nil)
	if err != nil || !ok {
		t.Fatalf("expected nil node to satisfy (no auth required), got %v %v", ok, err)
	}
}

func TestEvaluate_And(t *testing.T) {
	tree := auth.NodeAnd(auth.YesAuth(), auth.NoAuth())
	ok, _ := auth.Evaluate(context.Background(), tree, nil, nil, "", false, nil)
	if ok {
		t.Fatalf("expected And(Yes,No) to fail")
	}
}

func TestEvaluate_OrShortCircuits(t *testing.T) {
	tree := auth.NodeOr(auth.YesAuth(), auth.NoAuth())
	ok, _ := auth.Evaluate(context.Background(), tree, nil, nil, "", false, nil)
	if !ok {
		t.Fatalf("expected Or(Yes,No) to satisfy")
	}
}

func TestEvaluate_Not(t *testing.T) {
	ok, _ := auth.Evaluate(context.Background(), auth.NodeNot(auth.NoAuth()), nil, nil, "", false, nil)
	if !ok {
		t.Fatalf("expected Not(No) to satisfy")
	}
}

func TestEvaluate_Token(t *testing.T) {
	ok, _ := auth.Evaluate(context.Background(), auth.RequireToken(), nil, nil, "", true, nil)
	if !ok {
		t.Fatalf("expected token requirement satisfied when hasToken true")
	}
	ok, _ = auth.Evaluate(context.Background(), auth.RequireToken(), nil, nil, "", false, nil)
	if ok {
		t.Fatalf("expected token requirement unsatisfied when hasToken false")
	}
}
