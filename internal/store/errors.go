package store

import "errors"

var errSaveFailed = errors.New("store: save failed")
