package module

import "fmt"

// UnresolvedDependencyError reports a module whose declared dependency
// is not present in the registry. sort_modules in the original never
// handled this case (it referenced an undefined loop variable on the
// miss); this kernel raises explicitly instead of auto-inserting a
// stand-in module.
type UnresolvedDependencyError struct {
	Module     ID
	Dependency ID
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("module: %q depends on unregistered module %q", e.Module, e.Dependency)
}

// CyclicDependencyError reports that the registered modules' declared
// dependencies contain a cycle, so no valid order exists.
type CyclicDependencyError struct {
	Remaining []ID
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("module: dependency cycle among %v", e.Remaining)
}

// DuplicateIDError reports an attempt to register two modules under
// the same ID.
type DuplicateIDError struct {
	ID ID
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("module: %q is already registered", e.ID)
}
