package enrich

import "errors"

// errSkipped marks a sub-step that was not attempted.
var errSkipped = errors.New("skipped")
