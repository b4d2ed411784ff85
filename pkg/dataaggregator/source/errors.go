package source

import "errors"

var UnsupportedSourceError = errors.New("Unsupported source for this query")
