package common

import (
	"github.com/google/uuid"
)

// NewSubscriberID generates a unique subscriber ID with the "sub_" prefix
// Format: sub_<uuid>
func NewSubscriberID() string {
	return "sub_" + uuid.New().String()
}
