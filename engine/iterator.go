package engine

// ListIterator is an iterator for a proper list.
type ListIterator struct {
	List Term
	Heap *Heap

	whole   Term
	current Term
	err     error
}

// Next proceeds to the next element of the list and returns true if there's such an element.
func (i *ListIterator) Next() bool {
	if i.whole == nil {
		i.whole = i.List
	}
	switch l := i.Heap.Resolve(i.List).(type) {
	case Variable:
		i.err = InstantiationError(i.Heap)
		return false
	case Atom:
		if l != atomEmptyList {
			i.err = TypeError(ValidTypeList, i.whole, i.Heap)
		}
		return false
	case *Compound:
		if !l.isList() {
			i.err = TypeError(ValidTypeList, i.whole, i.Heap)
			return false
		}
		i.List = l.Args[1]
		i.current = l.Args[0]
		return true
	default:
		i.err = TypeError(ValidTypeList, i.whole, i.Heap)
		return false
	}
}

// Current returns the current element.
func (i *ListIterator) Current() Term {
	return i.current
}

// Err returns an error.
func (i *ListIterator) Err() error {
	return i.err
}

// Suffix returns the rest of the list which is not iterated yet.
func (i *ListIterator) Suffix() Term {
	return i.Heap.Resolve(i.List)
}
