package catalog

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable marks a failed fetch against the backing stores.
// Resolution never degrades to a partial merge; callers may retry.
var ErrSourceUnavailable = errors.New("catalog source unavailable")

// ErrPermissionDenied marks a mutation that targeted a shared-origin entry
// by a tenant that is not on the shared-editor allow-list. Retrying without
// a privilege change cannot succeed.
var ErrPermissionDenied = errors.New("permission denied for shared catalog entry")

// ErrNameSyncIncomplete reports that a shared display-name edit was
// persisted but the denormalized name copies held by tenant overrides could
// not all be refreshed. The primary write stands.
var ErrNameSyncIncomplete = errors.New("shared entry updated but mirrored names not synced")

// ValidationError rejects a create/update payload before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
