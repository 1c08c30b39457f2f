package storage

import "errors"

var ErrNotFound = errors.New("item not found in storage")
var ErrItemWithIDAlreadyExists = errors.New("item with id already exists")
var ErrDocumentNotFound = errors.New("document not found in storage")
