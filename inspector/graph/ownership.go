package graph

// ClassOwnership maps a binary class name to every component supplying it
type ClassOwnership struct {
	owners map[string]ComponentSet
}

// NewClassOwnership creates an empty ownership map
func NewClassOwnership() *ClassOwnership {
	return &ClassOwnership{owners: make(map[string]ComponentSet)}
}

// Register records that component supplies class
func (o *ClassOwnership) Register(class string, component ComponentIdentifier) {
	set, ok := o.owners[class]
	if !ok {
		set = make(ComponentSet, 1)
		o.owners[class] = set
	}
	set.Add(component)
}

// RegisterAll records that component supplies every class
func (o *ClassOwnership) RegisterAll(component ComponentIdentifier, classes []string) {
	for _, class := range classes {
		o.Register(class, component)
	}
}

// Owners returns components supplying class, nil for unknown classes (e.g. platform classes)
func (o *ClassOwnership) Owners(class string) ComponentSet {
	return o.owners[class]
}

// Merge adds every ownership of other into this map
func (o *ClassOwnership) Merge(other *ClassOwnership) {
	if other == nil {
		return
	}
	for class, set := range other.owners {
		for component := range set {
			o.Register(class, component)
		}
	}
}

// Len returns number of indexed classes
func (o *ClassOwnership) Len() int {
	return len(o.owners)
}

// Classes returns the set of indexed class names
func (o *ClassOwnership) Classes() ClassSet {
	ret := make(ClassSet, len(o.owners))
	for class := range o.owners {
		ret.Add(class)
	}
	return ret
}

// Ambiguous returns sorted classes supplied by more than one component
func (o *ClassOwnership) Ambiguous() []string {
	ret := make(ClassSet)
	for class, set := range o.owners {
		if len(set) > 1 {
			ret.Add(class)
		}
	}
	return ret.Sorted()
}
