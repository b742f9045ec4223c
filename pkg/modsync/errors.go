// SPDX-License-Identifier: MPL-2.0

package modsync

import (
	"errors"
	"fmt"

	"github.com/modbreeze/modbreeze/pkg/pack"
	"github.com/modbreeze/modbreeze/pkg/registry"
)

var (
	// ErrInvalidRequest is returned when a ResolveRequest cannot be served.
	ErrInvalidRequest = errors.New("invalid resolve request")
	// ErrNoCompatibleFile is the sentinel error wrapped by NoCompatibleFileError.
	ErrNoCompatibleFile = errors.New("no compatible file")
	// ErrDistributionDenied is the sentinel error wrapped by DistributionDeniedError.
	ErrDistributionDenied = errors.New("third-party distribution denied")
	// ErrUnsafeFileName is returned when a registry file name would escape its directory.
	ErrUnsafeFileName = errors.New("unsafe file name")
	// ErrTransferFailed is the sentinel error wrapped by TransferError.
	ErrTransferFailed = errors.New("transfer failed")
)

type (
	// NoCompatibleFileError is reported when no candidate satisfies the constraints.
	NoCompatibleFileError struct {
		Ref         pack.ModReference
		Constraints registry.Constraints
	}

	// DistributionDeniedError is reported when the best candidate has no download URL.
	DistributionDeniedError struct {
		Ref      pack.ModReference
		FileName string
	}

	// TransferError is returned by the Scheduler for the first failed transfer.
	TransferError struct {
		URL  string
		Path string
		Err  error
	}
)

// Error implements the error interface for NoCompatibleFileError.
func (e *NoCompatibleFileError) Error() string {
	return fmt.Sprintf("no file of %s matches %s", e.Ref, e.Constraints)
}

// Unwrap returns ErrNoCompatibleFile for errors.Is() compatibility.
func (e *NoCompatibleFileError) Unwrap() error { return ErrNoCompatibleFile }

// Error implements the error interface for DistributionDeniedError.
func (e *DistributionDeniedError) Error() string {
	return fmt.Sprintf("the author of %s does not allow %s to be downloaded by third parties", e.Ref, e.FileName)
}

// Unwrap returns ErrDistributionDenied for errors.Is() compatibility.
func (e *DistributionDeniedError) Unwrap() error { return ErrDistributionDenied }

// Error implements the error interface for TransferError.
func (e *TransferError) Error() string {
	return fmt.Sprintf("transferring %s to %s: %v", e.URL, e.Path, e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *TransferError) Unwrap() []error { return []error{ErrTransferFailed, e.Err} }
