package model

import "errors"

// ErrAuthFormNotFound is returned when the login page has no identifier and
// password input pair.
var ErrAuthFormNotFound = errors.New("authentication form not found")

// ErrAuthRejected is returned when the portal still shows the login surface,
// or an explicit failure marker, after the form was submitted.
var ErrAuthRejected = errors.New("authentication rejected")

// ErrNavigationTimeout is returned when a page transition does not settle
// within the bounded wait.
var ErrNavigationTimeout = errors.New("navigation timeout")

// ErrDocumentNotFound is returned when a detail page has no title.
var ErrDocumentNotFound = errors.New("document not found")

// ErrContentNotExtractable is returned when no extraction strategy applies.
var ErrContentNotExtractable = errors.New("content not extractable")

// ErrTransferFailed is returned when a direct byte fetch fails.
var ErrTransferFailed = errors.New("transfer failed")

// ErrSessionExpired is returned when the portal ended the session while a
// download was in progress.
var ErrSessionExpired = errors.New("session expired")

// ErrInapplicable signals that an extraction strategy cannot produce an
// artifact for this document. The pipeline consumes it; it never reaches
// callers of the pipeline.
var ErrInapplicable = errors.New("strategy inapplicable")
