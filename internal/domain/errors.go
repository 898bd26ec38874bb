package domain

import "errors"

var (
	// ErrEmptyTable is returned when the food-composition table is empty or absent
	ErrEmptyTable = errors.New("food composition table is empty")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrDishNotRecognized is returned when no dish could be extracted from a query
	ErrDishNotRecognized = errors.New("dish name could not be extracted from input")

	// ErrNoIngredientsMatched is returned when not a single ingredient resolved to a food
	ErrNoIngredientsMatched = errors.New("no ingredients could be matched")

	// ErrReasoningFailure is returned when the reasoning service request fails
	ErrReasoningFailure = errors.New("reasoning service request failed")

	// ErrReasoningNotConfigured is returned when no reasoning service is wired in
	ErrReasoningNotConfigured = errors.New("reasoning service not configured")

	// ErrMalformedPayload is returned when the reasoning service answers with unusable JSON
	ErrMalformedPayload = errors.New("malformed reasoning payload")

	// ErrUnsupportedTableFormat is returned for table files of an unknown type
	ErrUnsupportedTableFormat = errors.New("unsupported food table format")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
