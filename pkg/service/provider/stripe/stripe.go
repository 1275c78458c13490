package stripe

import (
	"errors"
	"strconv"
)

var errInvalidProjectID = errors.New("invalid project id")

func projectIDParam(v string) (int64, error) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errInvalidProjectID
	}
	if id <= 0 {
		return 0, errInvalidProjectID
	}
	return id, nil
}
