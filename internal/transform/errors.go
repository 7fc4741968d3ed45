// SPDX-License-Identifier: MPL-2.0

package transform

import (
	"errors"
	"fmt"
)

const (
	// RefResource is a transform resource missing from the classpath.
	RefResource ReferenceKind = "resource"
	// RefClass is a class targeted by a rule or patch.
	RefClass ReferenceKind = "class"
	// RefMixin is a patch implementation class.
	RefMixin ReferenceKind = "mixin"
)

var (
	// ErrTransformConflict is the sentinel error wrapped by TransformConflictError.
	ErrTransformConflict = errors.New("transform conflict")
	// ErrUnresolvedReference is the sentinel error wrapped by UnresolvedReferenceError.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrInvalidTransform is returned for malformed transform resources.
	ErrInvalidTransform = errors.New("invalid transform resource")
)

type (
	// ReferenceKind classifies an UnresolvedReferenceError.
	ReferenceKind string

	// PatchOrigin identifies one patch inside the chain.
	PatchOrigin struct {
		Resource string
		Mixin    string
	}

	// TransformConflictError is returned when two patches modify the same
	// location incompatibly. Neither patch is applied.
	TransformConflictError struct {
		Kind   PatchKind
		Target string
		Member string
		At     string
		First  PatchOrigin
		Second PatchOrigin
	}

	// UnresolvedReferenceError is returned when a transform names something
	// the composed classpath does not contain.
	UnresolvedReferenceError struct {
		Kind     ReferenceKind
		Name     string
		Resource string
	}
)

// Error implements the error interface.
func (e *TransformConflictError) Error() string {
	loc := e.Target + "." + e.Member
	if e.At != "" {
		loc += " @ " + e.At
	}
	return fmt.Sprintf("conflicting %s patches on %s: %s (%s) and %s (%s)",
		e.Kind, loc, e.First.Mixin, e.First.Resource, e.Second.Mixin, e.Second.Resource)
}

// Unwrap returns ErrTransformConflict for errors.Is() compatibility.
func (e *TransformConflictError) Unwrap() error { return ErrTransformConflict }

// Error implements the error interface.
func (e *UnresolvedReferenceError) Error() string {
	if e.Kind == RefResource {
		return fmt.Sprintf("transform resource %q not found on the classpath", e.Name)
	}
	return fmt.Sprintf("%s: %s %q not found on the classpath", e.Resource, e.Kind, e.Name)
}

// Unwrap returns ErrUnresolvedReference for errors.Is() compatibility.
func (e *UnresolvedReferenceError) Unwrap() error { return ErrUnresolvedReference }
