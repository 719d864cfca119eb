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

package diag

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	infoColor  = color.New(color.FgCyan)
	posColor   = color.New(color.Bold)
)

// Print writes the diagnostics of b ordered by position. Severities are colored when colored is set.
func Print(w io.Writer, b *Bag, colored bool) {
	if b == nil || len(b.Items) == 0 {
		return
	}
	items := make([]Diagnostic, len(b.Items))
	copy(items, b.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Pos.Before(items[j].Pos) })
	for _, d := range items {
		if !colored {
			fmt.Fprintln(w, d.String())
			continue
		}
		sev := errorColor
		if d.Severity == Info {
			sev = infoColor
		}
		fmt.Fprintf(w, "%s: %s: %s\n", posColor.Sprint(d.Pos), sev.Sprint(d.Severity), d.Message())
	}
	if b.dropped > 0 {
		fmt.Fprintf(w, "(%d more diagnostics omitted)\n", b.dropped)
	}
}
