package utils

import "github.com/google/uuid"

// NewConnName returns a process-unique connection name used as the registry member key.
func NewConnName() string {
	return "conn." + uuid.NewString()
}
