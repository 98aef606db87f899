package item

// List is an ordered collection of items. Order is insertion order and is
// meaningful: flow layout and target words like "first"/"last" depend on it.
type List []*Item

// IDs returns the item ids in list order.
func (l List) IDs() []string {
	ids := make([]string, len(l))
	for i, it := range l {
		ids[i] = it.ID
	}
	return ids
}

// Find returns the item with the given id, or nil if absent.
func (l List) Find(id string) *Item {
	for _, it := range l {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Index returns the position of the item with the given id, or -1.
func (l List) Index(id string) int {
	for i, it := range l {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// OfType returns the items of the given type, preserving order.
func (l List) OfType(t Type) List {
	var out List
	for _, it := range l {
		if it.Type == t {
			out = append(out, it)
		}
	}
	return out
}

// Count returns the number of items of the given type.
func (l List) Count(t Type) int {
	n := 0
	for _, it := range l {
		if it.Type == t {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the list.
func (l List) Clone() List {
	out := make(List, len(l))
	for i, it := range l {
		out[i] = it.Clone()
	}
	return out
}

// Without returns the list minus the items with the given ids.
func (l List) Without(ids ...string) List {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var out List
	for _, it := range l {
		if !drop[it.ID] {
			out = append(out, it)
		}
	}
	return out
}
