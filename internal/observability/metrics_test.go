package observability

import (
	"testing"
	"time"

	"github.com/elrstools/crsflink/internal/crsf/frame"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordFrame("/dev/ttyS0", "rc_channels")
	RecordLinkTransition("/dev/ttyS0", "connected", true)
	RecordLinkTransition("/dev/ttyS0", "searching", false)
	RecordStreamStats("/dev/ttyS0",
		frame.Stats{},
		frame.Stats{FramesYielded: 3, BytesDiscarded: 12, CRCErrors: 1})
	RecordHTTPRequest("GET", "/status", 200, 12*time.Millisecond)
}
