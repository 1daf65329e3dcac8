package ledger

type EntityType string

func (et EntityType) String() string {
	return string(et)
}

type Entity[T any] struct {
	Account  AccountId
	Revision Revision
	Type     EntityType
	State    *T
}

func (e *Entity[T]) Initialized() bool {
	return e.Revision != InitialRevision && e.State != nil
}
