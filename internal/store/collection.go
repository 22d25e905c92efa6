package store

// Reconciliation helpers shared by the domain stores. Every mutation of a
// mirrored collection flows through one of these with a server-confirmed
// record: create prepends, update replaces by identifier, delete removes by
// identifier, and list fetches replace wholesale (or append under pagination).

// replaceByID returns items with the element whose id matches repl swapped
// for repl. When no element matches, items is returned unchanged: an update
// for an entity the mirror never held is not an invitation to invent one.
func replaceByID[T any](items []T, id func(T) int, repl T) []T {
	target := id(repl)
	for i := range items {
		if id(items[i]) == target {
			items[i] = repl
			break
		}
	}
	return items
}

// removeByID returns items without the element whose id matches target.
// Exactly the matching record is dropped; all others keep their order.
func removeByID[T any](items []T, id func(T) int, target int) []T {
	out := items[:0]
	for _, it := range items {
		if id(it) != target {
			out = append(out, it)
		}
	}
	return out
}

// prepend puts a freshly created record at the head of the collection,
// matching the newest-first ordering of server list responses.
func prepend[T any](items []T, item T) []T {
	return append([]T{item}, items...)
}

// copySlice returns a defensive copy so callers cannot mutate the mirror.
func copySlice[T any](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
