package domain

import "errors"

var (
	// Input errors
	ErrValidation       = errors.New("validation failed")
	ErrInvalidDateRange = errors.New("end date must not be before start date")

	// Session errors
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionAlreadyActive  = errors.New("another session is already in progress for this account")
	ErrSessionNotRunnable    = errors.New("session is not in a runnable state")
	ErrSessionNotCancellable = errors.New("session cannot be cancelled from its current state")
	ErrSessionTimeout        = errors.New("session exceeded its execution budget")

	// Match and discrepancy errors
	ErrMatchNotFound       = errors.New("match not found")
	ErrDiscrepancyNotFound = errors.New("discrepancy not found")
	ErrRuleNotFound        = errors.New("rule not found")

	// Concurrency errors
	ErrConcurrentModification = errors.New("book transaction already claimed in this session")

	// Store errors
	ErrPersistence = errors.New("persistence failure")
)
