package dataset

import (
	"errors"

	"etlgen/internal/incremental"
)

var (
	ErrInvalidRowCount = errors.New("row count must be greater than zero")
	ErrInvalidFraction = incremental.ErrInvalidFraction
)
