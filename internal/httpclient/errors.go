package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// Kind classifies a transport failure.
type Kind string

const (
	KindTimeout         Kind = "timeout"
	KindConnectRefused  Kind = "connect_refused"
	KindDNSFailure      Kind = "dns_failure"
	KindTLSFailure      Kind = "tls_failure"
	KindInvalidResponse Kind = "invalid_response"
	KindOther           Kind = "other"
)

// TransportError is a per-request network failure. It becomes part of
// the comparison for its (row, route, environment) rather than aborting
// the run.
type TransportError struct {
	Kind Kind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport (%s): %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// classify maps a net/http error onto the taxonomy. Unrecognized
// failures land on KindOther rather than being dropped.
func classify(err error) *TransportError {
	var (
		netErr  net.Error
		dnsErr  *net.DNSError
		sysErr  syscall.Errno
		certErr *tls.CertificateVerificationError
		recErr  tls.RecordHeaderError
		x509Err x509.UnknownAuthorityError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, os.ErrDeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return &TransportError{Kind: KindTimeout, Err: err}
	case errors.As(err, &dnsErr):
		return &TransportError{Kind: KindDNSFailure, Err: err}
	case errors.As(err, &certErr), errors.As(err, &recErr), errors.As(err, &x509Err):
		return &TransportError{Kind: KindTLSFailure, Err: err}
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.As(err, &sysErr) && sysErr == syscall.ECONNREFUSED:
		return &TransportError{Kind: KindConnectRefused, Err: err}
	case strings.Contains(err.Error(), "malformed HTTP"),
		strings.Contains(err.Error(), "server gave HTTP response to HTTPS client"):
		return &TransportError{Kind: KindInvalidResponse, Err: err}
	}
	return &TransportError{Kind: KindOther, Err: err}
}
