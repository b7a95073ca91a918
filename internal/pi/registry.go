package pi

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// CalculatorFactory creates and caches calculators by algorithm tag.
type CalculatorFactory interface {
	// Create returns a fresh calculator for tag.
	Create(tag string) (Calculator, error)
	// Get returns the cached calculator for tag, creating it on first use.
	Get(tag string) (Calculator, error)
	// Resolve returns the calculator of a catalogued library and id.
	Resolve(lib Library, id int) (Calculator, error)
	// List returns the registered tags, sorted.
	List() []string
	// Register adds or replaces a calculator.
	Register(tag string, creator func() coreCalculator) error
	// ForLibrary returns the calculators of a library in catalog order.
	ForLibrary(lib Library) []Calculator
}

// DefaultFactory is a concurrency-safe CalculatorFactory.
type DefaultFactory struct {
	mu          sync.RWMutex
	creators    map[string]func() coreCalculator
	calculators map[string]Calculator
}

// NewDefaultFactory returns a factory with the whole catalog registered.
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		creators:    make(map[string]func() coreCalculator),
		calculators: make(map[string]Calculator),
	}
	for _, alg := range All() {
		_ = f.Register(alg.Tag(), func() coreCalculator { return &seriesCalculator{alg: alg} })
	}
	return f
}

func normalizeTag(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}

// Register adds a calculator under tag, dropping any cached instance.
//
// Parameters:
//   - tag: The identifier, matched case-insensitively.
//   - creator: Builds the bare calculator. Must not be nil.
//
// Returns:
//   - error: An error if tag is empty or creator is nil.
func (f *DefaultFactory) Register(tag string, creator func() coreCalculator) error {
	if creator == nil {
		return fmt.Errorf("nil creator for calculator %q", tag)
	}
	tag = normalizeTag(tag)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creators[tag] = creator
	delete(f.calculators, tag)
	return nil
}

// Create returns a new, uncached calculator.
func (f *DefaultFactory) Create(tag string) (Calculator, error) {
	tag = normalizeTag(tag)
	f.mu.RLock()
	creator, ok := f.creators[tag]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown calculator: %s", tag)
	}
	return NewCalculator(creator()), nil
}

// Get returns the cached calculator for tag, creating it on first use.
//
// Parameters:
//   - tag: The algorithm tag, e.g. "GMP-CHD-SME-BLC".
//
// Returns:
//   - Calculator: The shared calculator instance.
//   - error: An error if no calculator is registered under tag.
func (f *DefaultFactory) Get(tag string) (Calculator, error) {
	tag = normalizeTag(tag)
	f.mu.RLock()
	if calc, ok := f.calculators[tag]; ok {
		f.mu.RUnlock()
		return calc, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if calc, ok := f.calculators[tag]; ok {
		return calc, nil
	}
	creator, ok := f.creators[tag]
	if !ok {
		return nil, fmt.Errorf("unknown calculator: %s", tag)
	}
	calc := NewCalculator(creator())
	f.calculators[tag] = calc
	return calc, nil
}

// Resolve looks the algorithm up in the catalog and returns its calculator.
func (f *DefaultFactory) Resolve(lib Library, id int) (Calculator, error) {
	alg, err := Lookup(lib, id)
	if err != nil {
		return nil, err
	}
	return f.Get(alg.Tag())
}

// List returns the registered tags in alphabetical order.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	tags := make([]string, 0, len(f.creators))
	for tag := range f.creators {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ForLibrary returns the catalogued calculators of lib ordered by ID.
func (f *DefaultFactory) ForLibrary(lib Library) []Calculator {
	algos := Algorithms(lib)
	calcs := make([]Calculator, 0, len(algos))
	for _, alg := range algos {
		if calc, err := f.Get(alg.Tag()); err == nil {
			calcs = append(calcs, calc)
		}
	}
	return calcs
}

// Has reports whether tag is registered.
func (f *DefaultFactory) Has(tag string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.creators[normalizeTag(tag)]
	return ok
}

var globalFactory = NewDefaultFactory()

// GlobalFactory returns the process-wide factory.
func GlobalFactory() *DefaultFactory {
	return globalFactory
}
