package collection

import "errors"

// ErrLoadFailed indicates that the stored collection exists but could not be
// read or decoded.
var ErrLoadFailed = errors.New("collection load failed")
