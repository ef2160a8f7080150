package recommend

import (
	"github.com/spigell/assessment-recommender/internal/catalog"
	"github.com/spigell/assessment-recommender/internal/index"
)

// Dataset bundles one catalog snapshot with the indices built from it.
// The three parts always belong to the same catalog version; a rebuild
// produces a whole new Dataset which is swapped into the shared holder
// atomically.
type Dataset struct {
	Snapshot *catalog.Snapshot
	Lexical  *index.Lexical
	Vector   *index.Vector
}

// Holder is the shared handle the engine and server read the current
// dataset from.
type Holder = catalog.Holder[Dataset]

// NewHolder creates a dataset holder.
func NewHolder(d *Dataset) *Holder {
	return catalog.NewHolder(d)
}
