package reftable

import _ "embed"

// defaultTable is the bundled world-best table in the original JSON layout.
//
//go:embed data/age_grading_data.json
var defaultTable []byte
