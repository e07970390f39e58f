package prediction

import "errors"

var (
	errTooDeep   = errors.New("arrays are nested too deep")
	errNotArray  = errors.New("not an array")
	errEmpty     = errors.New("empty array")
	errShort     = errors.New("needs cpu and memory")
	errNotNumber = errors.New("not a number")
)
