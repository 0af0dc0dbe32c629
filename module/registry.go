package module

import "sort"

// Registry holds the set of collaborator modules for one simulation
// run and produces the dependency-respecting order the Simulation
// Driver steps them in. Grounded on original_source/engine.py's
// register_module/deregister_module and util.py's sort_modules, with
// the unresolved-dependency case made explicit (see
// UnresolvedDependencyError) rather than silently mishandled.
type Registry struct {
	modules map[ID]Module
	order   []ID // registration order, used as the stable tie-break
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{modules: map[ID]Module{}}
}

// Register adds m to the registry. Fails with DuplicateIDError if a
// module with the same ID is already registered.
func (r *Registry) Register(m Module) error {
	id := m.ID()
	if _, exists := r.modules[id]; exists {
		return &DuplicateIDError{ID: id}
	}
	r.modules[id] = m
	r.order = append(r.order, id)
	return nil
}

// Deregister removes the module with the given ID, if present.
func (r *Registry) Deregister(id ID) {
	if _, exists := r.modules[id]; !exists {
		return
	}
	delete(r.modules, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Ordered returns the registered modules in an order that respects
// every declared dependency, with the Base Demographics Module (if
// registered) pinned first. Ties among modules with no relative
// ordering requirement are broken by registration order, so two
// registries built by registering the same modules in the same
// sequence always agree.
//
// Fails with UnresolvedDependencyError if a module depends on an ID
// that was never registered, or CyclicDependencyError if the
// remaining dependency graph has no valid topological order.
func (r *Registry) Ordered() ([]Module, error) {
	for _, id := range r.order {
		for dep := range r.modules[id].Dependencies() {
			if _, ok := r.modules[dep]; !ok {
				return nil, &UnresolvedDependencyError{Module: id, Dependency: dep}
			}
		}
	}

	indegree := map[ID]int{}
	dependents := map[ID][]ID{}
	for _, id := range r.order {
		indegree[id] = 0
	}
	for _, id := range r.order {
		if id == BaseID {
			continue
		}
		for dep := range r.modules[id].Dependencies() {
			indegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []ID
	if _, hasBase := r.modules[BaseID]; hasBase && indegree[BaseID] == 0 {
		ready = append(ready, BaseID)
	}
	for _, id := range r.order {
		if id == BaseID {
			continue
		}
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	seqOf := map[ID]int{}
	for i, id := range r.order {
		seqOf[id] = i
	}

	var result []ID
	visited := map[ID]bool{}
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool {
			if ready[i] == BaseID {
				return true
			}
			if ready[j] == BaseID {
				return false
			}
			return seqOf[ready[i]] < seqOf[ready[j]]
		})
		next := ready[0]
		ready = ready[1:]
		if visited[next] {
			continue
		}
		visited[next] = true
		result = append(result, next)
		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(result) != len(r.modules) {
		var remaining []ID
		for id := range r.modules {
			if !visited[id] {
				remaining = append(remaining, id)
			}
		}
		sort.Slice(remaining, func(i, j int) bool { return remaining[i] < remaining[j] })
		return nil, &CyclicDependencyError{Remaining: remaining}
	}

	out := make([]Module, len(result))
	for i, id := range result {
		out[i] = r.modules[id]
	}
	return out, nil
}
