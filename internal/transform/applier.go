// SPDX-License-Identifier: MPL-2.0

package transform

import (
	"context"
	"strings"
	"sync"

	"github.com/stratalaunch/strata/pkg/target"
)

const (
	// AccessWidenersProperty lists the access-widener resources, in order.
	AccessWidenersProperty = "strata.accesswideners"
	// PatchConfigsProperty lists the patch-config resources, in order.
	PatchConfigsProperty = "strata.patchconfigs"
)

// PropertyApplier hands the verified chain to the bootstrap layer inside the
// JVM, which performs the bytecode work at class-load time. It records the
// applied resources and renders them as system properties.
type PropertyApplier struct {
	mu             sync.Mutex
	accessWideners []string
	patchConfigs   []string
}

// Apply records the step.
func (a *PropertyApplier) Apply(_ context.Context, step Step) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch step.Spec.Kind {
	case target.TransformAccessWidener:
		a.accessWideners = append(a.accessWideners, step.Spec.Resource)
	case target.TransformPatchConfig:
		a.patchConfigs = append(a.patchConfigs, step.Spec.Resource)
	}
	return nil
}

// SystemProperties returns the -D flags describing the recorded chain.
// Kinds with no steps are omitted.
func (a *PropertyApplier) SystemProperties() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var props []string
	if len(a.accessWideners) > 0 {
		props = append(props, "-D"+AccessWidenersProperty+"="+strings.Join(a.accessWideners, ","))
	}
	if len(a.patchConfigs) > 0 {
		props = append(props, "-D"+PatchConfigsProperty+"="+strings.Join(a.patchConfigs, ","))
	}
	return props
}
