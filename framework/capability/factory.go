package capability

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// Factory indexes the implementations available for one capability type.
// It is populated before binding and only read afterwards.
type Factory struct {
	typ   Type
	impls map[string]Implementation
	log   *logrus.Entry
}

// NewFactory creates an empty factory for t. A nil log uses the logrus
// standard logger.
func NewFactory(t Type, log *logrus.Entry) *Factory {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Factory{
		typ:   t,
		impls: make(map[string]Implementation),
		log:   log.WithField("capability", string(t)),
	}
}

// Type returns the capability type the factory serves.
func (f *Factory) Type() Type { return f.typ }

// Add indexes impl by its name. An implementation already registered under
// the same name is replaced; the last writer wins.
func (f *Factory) Add(impl Implementation) {
	name := impl.Name()
	if _, exists := f.impls[name]; exists {
		f.log.WithField("implementation", name).Warn("replacing previously registered implementation")
	}
	f.impls[name] = impl
}

// Get returns the implementation registered under name.
func (f *Factory) Get(name string) (Implementation, error) {
	impl, ok := f.impls[name]
	if !ok {
		return nil, &UnregisteredImplementationError{Type: f.typ, Name: name, Known: f.Names()}
	}
	return impl, nil
}

// GetNamedCapable is Get restricted to implementations supporting named
// instances.
func (f *Factory) GetNamedCapable(name string) (NamedImplementation, error) {
	impl, err := f.Get(name)
	if err != nil {
		return nil, err
	}
	named, ok := impl.(NamedImplementation)
	if !ok {
		return nil, &UnsupportedNamedInstanceError{Type: f.typ, Name: name}
	}
	return named, nil
}

// GetStrategyCapable is Get restricted to implementations able to build a
// strategy aggregate.
func (f *Factory) GetStrategyCapable(name string) (StrategyImplementation, error) {
	impl, err := f.Get(name)
	if err != nil {
		return nil, err
	}
	strategy, ok := impl.(StrategyImplementation)
	if !ok {
		return nil, &UnsupportedStrategyError{Type: f.typ, Name: name}
	}
	return strategy, nil
}

// Names returns the sorted names of every registered implementation.
func (f *Factory) Names() []string {
	names := make([]string, 0, len(f.impls))
	for name := range f.impls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
