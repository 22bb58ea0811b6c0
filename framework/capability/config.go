package capability

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Field names used in configuration entries.
const (
	FieldDependencyName  = "dependencyName"
	FieldInstanceName    = "instanceName"
	FieldBindingStrategy = "bindingStrategy"
)

// Config is one configuration entry: the implementation to use, the
// instance name when several may be active, and implementation-specific
// fields.
//
//	dependencyName: memory
//	instanceName: primary
//	bucket: uploads
type Config struct {
	DependencyName string         `yaml:"dependencyName" json:"dependencyName"`
	InstanceName   string         `yaml:"instanceName,omitempty" json:"instanceName,omitempty"`
	Fields         map[string]any `yaml:",inline" json:"fields,omitempty"`
}

// Decode copies the implementation-specific fields into out, which is
// usually a pointer to a settings struct with mapstructure tags. Scalar
// values are converted weakly ("42" decodes into an int).
func (c Config) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(c.Fields); err != nil {
		return fmt.Errorf("capability: decoding %q settings: %w", c.DependencyName, err)
	}
	return nil
}

// Field returns the string form of a named field, or "" when absent.
func (c Config) Field(name string) string {
	switch name {
	case FieldDependencyName:
		return c.DependencyName
	case FieldInstanceName:
		return c.InstanceName
	}
	v, ok := c.Fields[name]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// BindingStrategy names how a capability's configuration is wired.
type BindingStrategy string

const (
	// Dependency binds exactly one implementation.
	Dependency BindingStrategy = "Dependency"
	// NamedDependency activates several named instances side by side.
	NamedDependency BindingStrategy = "NamedDependency"
	// StrategyDependency activates named pool members and exposes an
	// aggregate that routes every call to one of them.
	StrategyDependency BindingStrategy = "StrategyDependency"
)

// Binding is the configuration of one capability type. Exactly one shape
// is in use, selected by Strategy:
//
//   - Dependency: Instance.
//   - NamedDependency: Instances.
//   - StrategyDependency: Instance is the descriptor (its DependencyName picks
//     the implementation that builds the aggregate), Instances are the pool
//     members, activated as named instances before the aggregate.
type Binding struct {
	Strategy  BindingStrategy
	Instance  *Config
	Instances []Config
}

// SingleBinding configures one implementation.
func SingleBinding(cfg Config) Binding {
	return Binding{Strategy: Dependency, Instance: &cfg}
}

// NamedBinding configures a list of named instances.
func NamedBinding(cfgs ...Config) Binding {
	return Binding{Strategy: NamedDependency, Instances: cfgs}
}

// StrategyBinding configures a strategy aggregate over members.
func StrategyBinding(descriptor Config, members ...Config) Binding {
	return Binding{Strategy: StrategyDependency, Instance: &descriptor, Instances: members}
}

// Document maps every configured capability type to its binding.
type Document map[Type]Binding

// UnmarshalYAML accepts the three document shapes:
//
//	ServerStorage: {dependencyName: memory, bucket: a}        # single
//	ServerStorage: [{dependencyName: memory, instanceName: a}] # named list
//	ClientStorage: {bindingStrategy: StrategyDependency, dependencyName: memory, instances: [...]}
//
// and the explicit {bindingStrategy: Dependency, instance: {...}},
// {bindingStrategy: NamedDependency, instances: [...]} and
// {bindingStrategy: StrategyDependency, instance: {...}, instances: [...]}
// forms.
func (b *Binding) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []Config
		if err := node.Decode(&list); err != nil {
			return err
		}
		*b = NamedBinding(list...)
		return nil
	case yaml.MappingNode:
	default:
		return fmt.Errorf("capability: line %d: binding must be a mapping or a list", node.Line)
	}

	var shape struct {
		Strategy  BindingStrategy `yaml:"bindingStrategy"`
		Instance  *Config         `yaml:"instance"`
		Instances []Config        `yaml:"instances"`
	}
	if err := node.Decode(&shape); err != nil {
		return err
	}

	switch shape.Strategy {
	case "":
		var cfg Config
		if err := node.Decode(&cfg); err != nil {
			return err
		}
		*b = SingleBinding(cfg)
	case Dependency:
		if shape.Instance == nil {
			return fmt.Errorf("capability: line %d: %s binding needs an instance", node.Line, Dependency)
		}
		*b = SingleBinding(*shape.Instance)
	case NamedDependency:
		*b = NamedBinding(shape.Instances...)
	case StrategyDependency:
		if shape.Instance != nil {
			*b = StrategyBinding(*shape.Instance, shape.Instances...)
			return nil
		}
		var descriptor Config
		if err := node.Decode(&descriptor); err != nil {
			return err
		}
		delete(descriptor.Fields, FieldBindingStrategy)
		delete(descriptor.Fields, "instances")
		*b = StrategyBinding(descriptor, shape.Instances...)
	default:
		return fmt.Errorf("capability: line %d: unknown %s %q", node.Line, FieldBindingStrategy, shape.Strategy)
	}
	return nil
}
