package sentinel

import (
	"database/sql"
	"errors"
)

var ErrMissing = errors.New("missing")

var ErrorCount = 3

func lookup(err error) int {
	if err == ErrMissing { // want `comparison with ErrMissing: use errors.Is`
		return 1
	}
	if sql.ErrNoRows != err { // want `comparison with ErrNoRows: use errors.Is`
		return 2
	}
	if errors.Is(err, ErrMissing) {
		return 3
	}
	if err == nil {
		return 4
	}

	ErrLocal := errors.New("local")
	if err == ErrLocal {
		return 5
	}
	if ErrorCount == 3 {
		return 6
	}
	return 0
}
