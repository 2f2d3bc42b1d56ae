package models

import "errors"

// Store errors shared by every order repository.
var (
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderExists   = errors.New("order already exists")
)
