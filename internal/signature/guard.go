package signature

import (
	"fmt"

	manifolderrors "github.com/standardbeagle/manifold/internal/errors"
)

// RequireMinLength enforces the TooShort error kind for entry points that
// need a full window to produce a meaningful signature (compute_signature,
// verify_snippet — spec §7). The low-level Encode function itself has no
// such gate: it always follows the §4.1 windowing policy, which is needed
// by callers that only want per-window metrics over short chaos snippets.
func RequireMinLength(data []byte, windowBytes int) error {
	if len(data) < windowBytes {
		return manifolderrors.New(manifolderrors.TooShort, "compute_signature",
			fmt.Errorf("input is %d bytes, need at least %d", len(data), windowBytes)).
			WithRecoverable(true)
	}
	return nil
}
