package annotator

import (
	"testing"

	"go.uber.org/goleak"
)

// Batch runs files on a worker pool; no worker may outlive the call.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
