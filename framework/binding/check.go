package binding

import (
	"github.com/km-arc/go-capability/framework/capability"
	"github.com/km-arc/go-capability/framework/validation"
)

// Implementation names and instance tags are opaque: only their presence
// is checked here. An unknown name is reported by the factory, with the
// names it does know.
var (
	entryRules = validation.Rules{
		capability.FieldDependencyName: "required",
	}
	instanceRules = validation.Rules{
		capability.FieldDependencyName: "required",
		capability.FieldInstanceName:   "required",
	}
)

// checkEntry validates the reserved fields of one configuration entry.
// Index is the position in an instance list, or -1.
func checkEntry(t capability.Type, cfg capability.Config, index int, named bool) error {
	rules := entryRules
	if named {
		rules = instanceRules
	}

	v := validation.Make(map[string]string{
		capability.FieldDependencyName: cfg.DependencyName,
		capability.FieldInstanceName:   cfg.InstanceName,
	}, rules)
	if v.Passes() {
		return nil
	}
	return &capability.MissingFieldError{Type: t, Field: v.Errors().Fields()[0], Index: index}
}

// checkInstances validates every entry of an instance list and rejects
// repeated instance names.
func checkInstances(t capability.Type, cfgs []capability.Config) error {
	seen := make(map[string]bool, len(cfgs))
	for i, cfg := range cfgs {
		if err := checkEntry(t, cfg, i, true); err != nil {
			return err
		}
		if seen[cfg.InstanceName] {
			return &capability.DuplicateInstanceError{Type: t, Instance: cfg.InstanceName}
		}
		seen[cfg.InstanceName] = true
	}
	return nil
}
