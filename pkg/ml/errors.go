// Package ml implements the gradient-boosted tree models used to score promotions
package ml

import "errors"

// Define static errors
var (
	ErrEmptyDataset     = errors.New("dataset is empty")
	ErrLengthMismatch   = errors.New("features and targets differ in length")
	ErrFeatureMismatch  = errors.New("feature count does not match the fitted model")
	ErrNotFitted        = errors.New("model is not fitted")
	ErrUnseenCategory   = errors.New("category was not seen during fitting")
	ErrTooFewSamples    = errors.New("not enough samples to split")
	ErrInvalidParameter = errors.New("invalid model parameter")
)
