package admin

import "errors"

var (
	ErrExportUnavailable = errors.New("statement export storage not configured")
	ErrInternal          = errors.New("internal admin error")
)
