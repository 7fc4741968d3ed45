// SPDX-License-Identifier: MPL-2.0

// Package transform runs the ordered transform chain of a target against its
// composed classpath.
//
// Access-widener rule sets always run before patch configurations; within
// each kind the declared order is kept. Every resource is read by name from
// the classpath, parsed, checked against the class index, and checked for
// conflicting patches across the whole chain before the first step is
// applied. Application itself is delegated to an Applier.
package transform
