package storage

import "errors"

var ErrNotFound = errors.New("item not found in storage")
var ErrAlreadyExists = errors.New("item with the same key already exists")
var ErrAlreadyVoted = errors.New("a vote for this category was already registered")
var ErrNoTokensRemaining = errors.New("no voting tokens remaining")
var ErrTokensBelowUsed = errors.New("assigned tokens cannot be lower than tokens already used")
