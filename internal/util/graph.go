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

import "sort"

type Graph [][]int

func NewGraph(numVerts int) Graph { return Graph(make([][]int, numVerts)) }

func (g Graph) AddEdge(from, to int) {
	if !g.HasEdge(from, to) {
		g[from] = append(g[from], to)
	}
}

func (g Graph) HasEdge(from, to int) bool {
	for _, succ := range g[from] {
		if succ == to {
			return true
		}
	}
	return false
}

// Undirected returns the graph with every edge added in both directions.
func (g Graph) Undirected() Graph {
	u := NewGraph(len(g))
	for from, succs := range g {
		for _, to := range succs {
			u.AddEdge(from, to)
			u.AddEdge(to, from)
		}
	}
	return u
}

// PostOrder returns the vertices reachable from entry in depth-first post-order.
// Successors are visited in edge order.
func (g Graph) PostOrder(entry int, reverse bool) []int {
	if len(g) == 0 {
		return nil
	}
	order := make([]int, 0, len(g))
	seen := make([]bool, len(g))
	order = g.postOrder(entry, order, seen)
	if reverse {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}
	return order
}

func (g Graph) postOrder(curr int, order []int, seen []bool) []int {
	seen[curr] = true
	for _, succ := range g[curr] {
		if !seen[succ] {
			order = g.postOrder(succ, order, seen)
		}
	}
	return append(order, curr)
}

// Components returns the connected components of the graph, ignoring edge direction.
// Vertices within a component are sorted; components are ordered by their smallest vertex.
func (g Graph) Components() [][]int {
	u := g.Undirected()
	seen := make([]bool, len(g))
	var comps [][]int
	for v := range u {
		if seen[v] {
			continue
		}
		comp := []int{v}
		seen[v] = true
		for i := 0; i < len(comp); i++ {
			for _, succ := range u[comp[i]] {
				if !seen[succ] {
					seen[succ] = true
					comp = append(comp, succ)
				}
			}
		}
		sort.Ints(comp)
		comps = append(comps, comp)
	}
	return comps
}

// SCC returns the strongly connected components of the graph in topological order: a component
// comes before every component its edges lead to. Vertices are visited in index order.
func (g Graph) SCC() [][]int {
	st := sccState{
		index:   make([]int, len(g)),
		lowLink: make([]int, len(g)),
		onStack: make([]bool, len(g)),
	}
	for v := range g {
		if st.index[v] == 0 {
			g.strongConnect(&st, v)
		}
	}
	// Tarjan's algorithm emits a component after every component it reaches.
	sccs := st.sccs
	for i, j := 0, len(sccs)-1; i < j; i, j = i+1, j-1 {
		sccs[i], sccs[j] = sccs[j], sccs[i]
	}
	return sccs
}

// DependencyOrder returns every vertex after the vertices its edges lead to.
func (g Graph) DependencyOrder() []int {
	sccs := g.SCC()
	order := make([]int, 0, len(g))
	for i := len(sccs) - 1; i >= 0; i-- {
		order = append(order, sccs[i]...)
	}
	return order
}

type sccState struct {
	// index holds the 1-based visit number of each vertex; 0 is unvisited.
	index   []int
	lowLink []int
	onStack []bool
	next    int

	stack []int
	sccs  [][]int
}

func (g Graph) strongConnect(st *sccState, v int) {
	st.next++
	st.index[v], st.lowLink[v] = st.next, st.next
	st.stack = append(st.stack, v)
	st.onStack[v] = true

	for _, w := range g[v] {
		switch {
		case st.index[w] == 0:
			g.strongConnect(st, w)
			if st.lowLink[w] < st.lowLink[v] {
				st.lowLink[v] = st.lowLink[w]
			}
		case st.onStack[w] && st.index[w] < st.lowLink[v]:
			st.lowLink[v] = st.index[w]
		}
	}
	if st.lowLink[v] != st.index[v] {
		return
	}
	var comp []int
	for {
		w := st.stack[len(st.stack)-1]
		st.stack = st.stack[:len(st.stack)-1]
		st.onStack[w] = false
		comp = append(comp, w)
		if w == v {
			break
		}
	}
	sort.Ints(comp)
	st.sccs = append(st.sccs, comp)
}
