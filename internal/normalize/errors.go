package normalize

import (
	"errors"
	"fmt"
	"strconv"
)

var errNotObject = errors.New("expected a JSON object")

// ParseError reports a document that could not be normalized. Path names the
// offending field, e.g. "Weeks[1][0].exercises[2].setsReps"; it is empty
// when the document as a whole is malformed.
type ParseError struct {
	Path string
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	if e.Path == "" {
		return "parsing block: " + msg
	}
	return fmt.Sprintf("parsing block at %s: %s", e.Path, msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErr(path, msg string, err error) *ParseError {
	return &ParseError{Path: path, Msg: msg, Err: err}
}

func field(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
