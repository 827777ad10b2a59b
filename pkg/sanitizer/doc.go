// Package sanitizer normalizes free-text input before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result.
// Invalid input is never an error here; validators decide what to reject.
package sanitizer
