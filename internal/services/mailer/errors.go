package mailer

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a delivery failure by the SMTP stage that
// produced it, so logs distinguish a bad app password from a bounced
// recipient. Every kind is non-fatal to a digest run.
type ErrorKind string

const (
	// AuthFailure: the server rejected the credentials
	AuthFailure ErrorKind = "auth_failure"
	// RecipientRejected: the server refused the recipient address
	RecipientRejected ErrorKind = "recipient_rejected"
	// SenderRejected: the server refused the sender address
	SenderRejected ErrorKind = "sender_rejected"
	// TransportError: the SMTP conversation failed mid-protocol
	TransportError ErrorKind = "transport_error"
	// NetworkError: the server could not be reached at all
	NetworkError ErrorKind = "network_error"
)

// DeliveryError wraps a send failure with its classification.
type DeliveryError struct {
	Kind ErrorKind
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed (%s): %v", e.Kind, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind from a delivery error chain,
// defaulting to TransportError for unclassified errors.
func KindOf(err error) ErrorKind {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Kind
	}
	return TransportError
}

func classify(kind ErrorKind, format string, args ...interface{}) error {
	return &DeliveryError{Kind: kind, Err: fmt.Errorf(format, args...)}
}
