package types

// Order is the caller-specified iteration direction for paginated queries.
// Backends must honor it.
type Order string

const (
	Ascending  Order = "ascending"
	Descending Order = "descending"
)

// Cursor is an opaque continuation token. Callers pass it back verbatim;
// only the issuing backend interprets it.
type Cursor string

// Page is one page of a paginated query. NextCursor is nil when the query is
// exhausted in the requested direction.
type Page[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *Cursor `json:"next_cursor,omitempty"`
}

// TransactionFilter selects transactions for paginated queries. Nil fields
// are wildcards; set fields must all match.
type TransactionFilter struct {
	Sender *Address  `json:"sender,omitempty"`
	Object *ObjectID `json:"object,omitempty"`
}

// Matches reports whether a committed record passes the filter.
func (f *TransactionFilter) Matches(rec *TransactionRecord) bool {
	if f == nil {
		return true
	}
	if f.Sender != nil && rec.Transaction.Sender != *f.Sender {
		return false
	}
	if f.Object != nil {
		if !touchesObject(&rec.Effects, *f.Object) {
			return false
		}
	}
	return true
}

func touchesObject(eff *Effects, id ObjectID) bool {
	for _, refs := range [][]ObjectRef{eff.Created, eff.Mutated, eff.Deleted} {
		for _, ref := range refs {
			if ref.ID == id {
				return true
			}
		}
	}
	return false
}
