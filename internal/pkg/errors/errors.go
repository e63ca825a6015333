package errors

import "errors"

// Custom application errors
var (
	ErrParseFailure      = errors.New("time expression not understood")           // No sub-parser produced a future instant
	ErrPastTime          = errors.New("time expression resolves to the past")     // A sub-parser matched, but not in the future
	ErrEmptyContent      = errors.New("reminder content is empty")                // Nothing to remind about
	ErrIndexOutOfRange   = errors.New("reminder index out of range")              // User supplied list index does not exist
	ErrReminderNotFound  = errors.New("reminder not found")                       // Reminder id unknown in scope
	ErrExpired           = errors.New("reminder expired while paused")            // One-shot resumed after its time passed
	ErrDatabaseOperation = errors.New("database operation failed")                // Durable write or read failed
	ErrDelivery          = errors.New("reminder delivery failed")                 // Gateway still failing after all retries
	ErrScheduling        = errors.New("scheduling failed")                        // Timer could not be armed
	ErrInvalidConfig     = errors.New("invalid configuration")                    // Environment value rejected
	ErrInternalServer    = errors.New("internal server error")                    // Generic internal error
	ErrUnknownRecurrence = errors.New("unknown recurrence")                       // Recurrence word not recognised
	ErrUnknownTargetType = errors.New("unknown target type")                      // Destination kind not recognised
	ErrStoreClosed       = errors.New("reminder store is closed")                 // Store used after Close
	ErrLineAPI           = errors.New("failed to communicate with the LINE API") // Generic LINE API error
)
