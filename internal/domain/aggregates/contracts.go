package aggregates

// WriteTxOwnership says who opens and commits the DB transaction of a write.
type WriteTxOwnership string

// WriteTxOwnedByAggregate: every write method runs in its own transaction.
const WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"

// ReadPolicy says which reads an aggregate is allowed to expose.
type ReadPolicy string

// ReadPolicyInvariantScoped: only the reads a write needs to check its
// invariants. Listings and history stay on the table repos.
const ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"

type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	Notes            string
}

// Aggregate is implemented by every aggregate so wiring can log what it owns.
type Aggregate interface {
	Contract() Contract
}
