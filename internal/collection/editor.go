// Package collection implements copy-on-write editing of ordered row
// collections with dense 1-based serial numbers. The same contract is
// reused for product sub-documents (DEEC items, ARE rows) and for the
// financial ledgers (invoice rows, payment-request charges and bills).
package collection

// Row is implemented by any element carrying a displayed serial number.
// WithOrdinal returns a copy of the element with the ordinal replaced;
// it must not mutate the receiver.
type Row interface {
	Ordinal() int
	WithOrdinal(n int) any
}

// Editor edits one homogeneous collection. NewRow builds a default
// element for the given 1-based ordinal. Renumber controls whether
// Remove reassigns ordinals to stay dense; product serials stay stable
// after deletion because they are printed on issued paperwork, child
// rows always renumber.
type Editor[E Row] struct {
	NewRow   func(ordinal int) E
	Renumber bool
}

// Append returns a copy of rows with one default element appended at
// ordinal len+1. The input slice is never modified.
func (e Editor[E]) Append(rows []E) []E {
	out := make([]E, len(rows), len(rows)+1)
	copy(out, rows)
	return append(out, e.NewRow(len(rows)+1))
}

// UpdateAt returns a copy of rows with apply invoked on the element at
// index. An index one or more positions past the end materialises the
// missing rows first, which tolerates screens that render blank rows
// ahead of the backing data. A negative index is a no-op.
func (e Editor[E]) UpdateAt(rows []E, index int, apply func(E) E) []E {
	if index < 0 {
		return rows
	}
	n := len(rows)
	if index >= n {
		n = index + 1
	}
	out := make([]E, n)
	copy(out, rows)
	for i := len(rows); i < n; i++ {
		out[i] = e.NewRow(i + 1)
	}
	out[index] = apply(out[index])
	return out
}

// Remove returns a copy of rows without the element at index. When
// Renumber is set the remaining elements are reassigned dense 1-based
// ordinals. Out-of-range indexes return the input unchanged; a stale
// delete racing a re-render must not fail.
func (e Editor[E]) Remove(rows []E, index int) []E {
	if index < 0 || index >= len(rows) {
		return rows
	}
	out := make([]E, 0, len(rows)-1)
	out = append(out, rows[:index]...)
	out = append(out, rows[index+1:]...)
	if e.Renumber {
		for i := range out {
			if out[i].Ordinal() != i+1 {
				out[i] = out[i].WithOrdinal(i + 1).(E)
			}
		}
	}
	return out
}
