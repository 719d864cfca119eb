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

// Package diag holds the diagnostics reported while typing a module.
package diag

import (
	"fmt"
	"strings"
)

// Pos is a source position.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Before orders positions by file, line and column.
func (p Pos) Before(o Pos) bool {
	if p.File != o.File {
		return p.File < o.File
	}
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Col < o.Col
}

type Severity uint8

const (
	Error Severity = iota
	Info
)

func (s Severity) String() string {
	if s == Info {
		return "info"
	}
	return "error"
}

// Code identifies the kind of a diagnostic.
type Code uint8

const (
	MissingTypeInfo Code = iota
	MalformedDeclaration
	MalformedFunction
	MalformedTypeRef
	MalformedCall
	NameUndeclared
	UseBeforeInit
	NoSuchMember
	MemberNotAccessible
	NoCompatibleMember
	ArityMismatch
	OptionalBeforeRequired
	RedundantArgument
	ArgumentMismatch
	IllegalAssignment
	UnresolvedTypeRef
	NoMatchingVariant
	AmbiguousVariant
	ReturnTypeRequired
	UnsolvedCall
)

var templates = [...]string{
	MissingTypeInfo:        "Missing type info for {0}",
	MalformedDeclaration:   "Malformed declaration",
	MalformedFunction:      "Malformed function: {0}",
	MalformedTypeRef:       "Malformed type reference",
	MalformedCall:          "Malformed {0} call",
	NameUndeclared:         "Name {0} is not declared",
	UseBeforeInit:          "{0} is used before it is initialized",
	NoSuchMember:           "No member {0} in {1}",
	MemberNotAccessible:    "Member {0} of {1} is not accessible here",
	NoCompatibleMember:     "No member {0} of {1} supports {2}",
	ArityMismatch:          "Expected {0} arguments, got {1}",
	OptionalBeforeRequired: "Optional parameter {0} precedes a required parameter",
	RedundantArgument:      "Argument {0} has no matching parameter",
	ArgumentMismatch:       "Argument {0} of type {1} does not match {2}",
	IllegalAssignment:      "Cannot assign {1} to {0}",
	UnresolvedTypeRef:      "Type {0} could not be resolved",
	NoMatchingVariant:      "No variant of {0} accepts ({1})",
	AmbiguousVariant:       "Call to {0} is ambiguous between {1}",
	ReturnTypeRequired:     "Function {0} requires a declared return type",
	UnsolvedCall:           "Cannot infer type arguments for {0}: {1}",
}

func (c Code) String() string {
	names := [...]string{
		"MissingTypeInfo", "MalformedDeclaration", "MalformedFunction", "MalformedTypeRef",
		"MalformedCall", "NameUndeclared", "UseBeforeInit", "NoSuchMember", "MemberNotAccessible",
		"NoCompatibleMember", "ArityMismatch", "OptionalBeforeRequired", "RedundantArgument",
		"ArgumentMismatch", "IllegalAssignment", "UnresolvedTypeRef", "NoMatchingVariant",
		"AmbiguousVariant", "ReturnTypeRequired", "UnsolvedCall",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return fmt.Sprintf("Code(%d)", c)
}

// Template returns the message template for a code. Values are substituted for {N}.
func (c Code) Template() string {
	if int(c) < len(templates) {
		return templates[c]
	}
	return ""
}

// Diagnostic is a positioned message with the structured values it was built from.
type Diagnostic struct {
	Pos      Pos
	Severity Severity
	Code     Code
	Values   []interface{}
}

// New creates an error diagnostic.
func New(pos Pos, code Code, values ...interface{}) Diagnostic {
	return Diagnostic{Pos: pos, Code: code, Values: values}
}

// Message formats the template with the diagnostic's values.
func (d Diagnostic) Message() string {
	tmpl := d.Code.Template()
	var sb strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] == '{' && i+2 < len(tmpl) && tmpl[i+2] == '}' {
			n := int(tmpl[i+1] - '0')
			if n >= 0 && n < len(d.Values) {
				fmt.Fprint(&sb, d.Values[n])
			} else {
				sb.WriteString("?")
			}
			i += 2
			continue
		}
		sb.WriteByte(tmpl[i])
	}
	return sb.String()
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message())
}

// Bag collects diagnostics. Max limits the number of retained diagnostics; 0 means no limit.
type Bag struct {
	Items   []Diagnostic
	Max     int
	dropped int
}

// Add a diagnostic. It reports false when the diagnostic was dropped because the bag is full.
func (b *Bag) Add(d Diagnostic) bool {
	if b.Max > 0 && len(b.Items) >= b.Max {
		b.dropped++
		return false
	}
	b.Items = append(b.Items, d)
	return true
}

// Errorf adds an error diagnostic.
func (b *Bag) Errorf(pos Pos, code Code, values ...interface{}) Diagnostic {
	d := New(pos, code, values...)
	b.Add(d)
	return d
}

func (b *Bag) Len() int { return len(b.Items) }

// Dropped is the number of diagnostics discarded after Max was reached.
func (b *Bag) Dropped() int { return b.dropped }

func (b *Bag) HasErrors() bool {
	for _, d := range b.Items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Count the diagnostics carrying code.
func (b *Bag) Count(code Code) int {
	n := 0
	for _, d := range b.Items {
		if d.Code == code {
			n++
		}
	}
	return n
}

func (b *Bag) Reset() {
	b.Items = b.Items[:0]
	b.dropped = 0
}
