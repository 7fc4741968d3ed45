// SPDX-License-Identifier: MPL-2.0

package transform

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

const (
	// Accessible makes the target public.
	Accessible Access = "accessible"
	// Extendable removes final and makes the target subclassable or overridable.
	Extendable Access = "extendable"
	// Mutable removes final from a field.
	Mutable Access = "mutable"

	// MemberClass targets a class.
	MemberClass MemberKind = "class"
	// MemberMethod targets a method.
	MemberMethod MemberKind = "method"
	// MemberField targets a field.
	MemberField MemberKind = "field"

	transitivePrefix = "transitive-"
)

type (
	// Access is an access-widening directive.
	Access string

	// MemberKind is what a widening rule targets.
	MemberKind string

	// WidenRule is one line of an access-widener rule set.
	WidenRule struct {
		Access     Access
		Transitive bool
		Kind       MemberKind
		// Class is the internal (slash-separated) class name.
		Class      string
		Name       string
		Descriptor string
		Line       int
	}

	// AccessWidener is a parsed access-widener rule set.
	AccessWidener struct {
		Resource  string
		Version   int
		Namespace string
		Rules     []WidenRule
	}
)

// ParseAccessWidener parses the text format:
//
//	accessWidener v2 named
//	accessible class net/example/Foo
//	transitive-accessible method net/example/Foo run ()V
//	mutable field net/example/Foo count I
//
// Fields are separated by any whitespace and '#' starts a comment.
func ParseAccessWidener(resource string, data []byte) (*AccessWidener, error) {
	aw := &AccessWidener{Resource: resource}
	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	header := false

	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if !header {
			if err := aw.parseHeader(fields); err != nil {
				return nil, awError(resource, lineNo, err.Error())
			}
			header = true
			continue
		}

		rule, err := parseRule(fields, aw.Version)
		if err != nil {
			return nil, awError(resource, lineNo, err.Error())
		}
		rule.Line = lineNo
		aw.Rules = append(aw.Rules, rule)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", resource, err)
	}
	if !header {
		return nil, awError(resource, 0, "missing accessWidener header")
	}
	return aw, nil
}

func (aw *AccessWidener) parseHeader(fields []string) error {
	if len(fields) != 3 || fields[0] != "accessWidener" {
		return fmt.Errorf("expected header 'accessWidener <v1|v2> <namespace>', got %q", strings.Join(fields, " "))
	}
	switch fields[1] {
	case "v1":
		aw.Version = 1
	case "v2":
		aw.Version = 2
	default:
		return fmt.Errorf("unsupported version %q", fields[1])
	}
	aw.Namespace = fields[2]
	return nil
}

func parseRule(fields []string, version int) (WidenRule, error) {
	var r WidenRule

	access, transitive := strings.CutPrefix(fields[0], transitivePrefix)
	if transitive && version < 2 {
		return r, fmt.Errorf("%q requires version v2", fields[0])
	}
	r.Access = Access(access)
	r.Transitive = transitive
	switch r.Access {
	case Accessible, Extendable, Mutable:
	default:
		return r, fmt.Errorf("unknown access %q", fields[0])
	}

	if len(fields) < 2 {
		return r, fmt.Errorf("missing target kind")
	}
	r.Kind = MemberKind(fields[1])

	want := 5
	switch r.Kind {
	case MemberClass:
		want = 3
		if r.Access == Mutable {
			return r, fmt.Errorf("mutable applies to fields only")
		}
	case MemberMethod:
		if r.Access == Mutable {
			return r, fmt.Errorf("mutable applies to fields only")
		}
	case MemberField:
		if r.Access == Extendable {
			return r, fmt.Errorf("extendable does not apply to fields")
		}
	default:
		return r, fmt.Errorf("unknown target kind %q", fields[1])
	}
	if len(fields) != want {
		return r, fmt.Errorf("%s rule takes %d fields, got %d", r.Kind, want, len(fields))
	}

	r.Class = fields[2]
	if strings.Contains(r.Class, ".") {
		return r, fmt.Errorf("class %q must use internal names (a/b/C)", r.Class)
	}
	if want == 5 {
		r.Name = fields[3]
		r.Descriptor = fields[4]
	}
	return r, nil
}

func awError(resource string, line int, msg string) error {
	if line == 0 {
		return fmt.Errorf("%w: %s: %s", ErrInvalidTransform, resource, msg)
	}
	return fmt.Errorf("%w: %s:%d: %s", ErrInvalidTransform, resource, line, msg)
}

// Resolve checks that every rule's class is on the classpath.
func (aw *AccessWidener) Resolve(idx *Index) error {
	for _, r := range aw.Rules {
		if !idx.HasClass(r.Class) {
			return &UnresolvedReferenceError{Kind: RefClass, Name: r.Class, Resource: aw.Resource}
		}
	}
	return nil
}
