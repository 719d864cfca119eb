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

package ast

// Exit is the jump target leaving a block.
const Exit = -1

// Flow describes control flow between the children of a block. Each segment is a maximal
// straight-line run of children; jumps connect the end of one segment to the start of another.
// A block without flow is a single segment.
type Flow struct {
	Segments []Segment
	Jumps    []Jump
}

// Segment covers the children [Start, End) of a block.
type Segment struct {
	Start, End int
}

// Jump is an edge from the end of segment From to segment To, or to Exit.
type Jump struct {
	From, To int
	// Cond is the child index of the branch condition, or -1 for an unconditional jump.
	Cond int
	// When is the value of the condition for which the jump is taken.
	When bool
	// Failure edges are taken when an operation in the segment fails.
	Failure bool
	// Dead jumps were shown to be never taken.
	Dead bool
}

// Segments returns the segments of a block, synthesizing a single segment when it has no flow.
func (t *Tree) Segments(block NodeID) []Segment {
	n := t.Node(block)
	if n.Flow != nil && len(n.Flow.Segments) > 0 {
		return n.Flow.Segments
	}
	return []Segment{{0, len(n.Children)}}
}

// Successors returns the live jumps leaving segment i of a block. A segment without jumps falls
// through to the next segment, or exits after the last one.
func (f *Flow) Successors(i int) []Jump {
	var out []Jump
	for _, j := range f.Jumps {
		if j.From == i && !j.Dead {
			out = append(out, j)
		}
	}
	if len(out) == 0 {
		to := i + 1
		if to >= len(f.Segments) {
			to = Exit
		}
		out = append(out, Jump{From: i, To: to, Cond: -1})
	}
	return out
}

// AddSegment appends a segment covering [start, end) and returns its index.
func (f *Flow) AddSegment(start, end int) int {
	f.Segments = append(f.Segments, Segment{start, end})
	return len(f.Segments) - 1
}

// AddJump adds an edge unless an identical one exists.
func (f *Flow) AddJump(j Jump) {
	if !f.HasJump(j) {
		f.Jumps = append(f.Jumps, j)
	}
}

func (f *Flow) HasJump(j Jump) bool {
	for _, existing := range f.Jumps {
		if existing.From == j.From && existing.To == j.To && existing.Cond == j.Cond &&
			existing.When == j.When && existing.Failure == j.Failure {
			return true
		}
	}
	return false
}
