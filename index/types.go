package index

// Datatype of the attribute an index is built over. Only INTEGER is
// implemented; the other values exist for the metadata page format.
type Datatype int32

const (
	INTEGER Datatype = 0
	DOUBLE  Datatype = 1
	STRING  Datatype = 2
)

// Operator bounds a range scan. The low bound takes GT/GTE, the high
// bound LT/LTE.
type Operator int

const (
	LT Operator = iota
	LTE
	GTE
	GT
)
