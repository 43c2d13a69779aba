package sidecar

import "errors"

// Sentinel errors for sidecar parsing and ledger bookkeeping. Callers
// match with errors.Is; messages carry the offending file.
var (
	ErrMalformedJSON    = errors.New("sidecar JSON is not parseable")
	ErrMissingTitle     = errors.New("sidecar JSON has no title field")
	ErrTitleMismatch    = errors.New("sidecar title does not match its filename")
	ErrUnrecognizedName = errors.New("filename has no recognized sidecar suffix")
	ErrMarkFailed       = errors.New("could not mark sidecar as processed")
	ErrScriptGeneration = errors.New("could not generate recovery script")
)
