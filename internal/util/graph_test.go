// The MIT License (MIT)
//
// Copyright (c) 2019 West Damron
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package util

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPostOrder(t *testing.T) {
	// 0 -> 1 -> 3, 0 -> 2 -> 3, 3 -> 1 (back edge), 4 unreachable
	g := NewGraph(5)
	g.AddEdge(0, 1)
	g.AddEdge(0, 2)
	g.AddEdge(1, 3)
	g.AddEdge(2, 3)
	g.AddEdge(3, 1)

	if diff := cmp.Diff([]int{3, 1, 2, 0}, g.PostOrder(0, false)); diff != "" {
		t.Fatalf("post-order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 2, 1, 3}, g.PostOrder(0, true)); diff != "" {
		t.Fatalf("reverse post-order (-want +got):\n%s", diff)
	}
}

func TestSCC(t *testing.T) {
	g := NewGraph(4)
	g.AddEdge(0, 1)
	g.AddEdge(1, 0)
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)
	sccs := g.SCC()
	if len(sccs) != 3 {
		t.Fatalf("expected 3 components, got %v", sccs)
	}
	if diff := cmp.Diff([][]int{{0, 1}, {2}, {3}}, sccs); diff != "" {
		t.Fatalf("components (-want +got):\n%s", diff)
	}
}

func TestDependencyOrder(t *testing.T) {
	// 0 consumes 2, 2 consumes 1; 3 stands alone.
	g := NewGraph(4)
	g.AddEdge(0, 2)
	g.AddEdge(2, 1)
	if diff := cmp.Diff([]int{1, 2, 0, 3}, g.DependencyOrder()); diff != "" {
		t.Fatalf("dependency order (-want +got):\n%s", diff)
	}
}

func TestComponents(t *testing.T) {
	g := NewGraph(6)
	g.AddEdge(2, 0)
	g.AddEdge(1, 2)
	g.AddEdge(4, 3)
	want := [][]int{{0, 1, 2}, {3, 4}, {5}}
	if diff := cmp.Diff(want, g.Components()); diff != "" {
		t.Fatalf("components (-want +got):\n%s", diff)
	}
	if !g.Undirected().HasEdge(0, 2) {
		t.Fatal("expected an undirected edge")
	}
}
