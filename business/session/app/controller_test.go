package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/vantos/triarb/business/session/domain"
	"github.com/vantos/triarb/internal/logger"
	"github.com/vantos/triarb/internal/wsconn"
)

func newTestController(t *testing.T, expectedProtocol int) *Controller {
	t.Helper()
	conn, err := wsconn.New(wsconn.DefaultConfig("wss://example.invalid/ws", "test"))
	if err != nil {
		t.Fatalf("failed to build wsconn client: %v", err)
	}
	subs := domain.NewRegistry(1)
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	return NewController(conn, subs, "key", "secret", expectedProtocol, log)
}

// TestController_ProtocolVersionMismatch_IsFatal covers spec.md §8
// scenario 6: an "info" frame announcing a version that differs from
// the compiled-in API version must surface as a fatal stop, and no
// subsequent outbound frame may be sent.
func TestController_ProtocolVersionMismatch_IsFatal(t *testing.T) {
	c := newTestController(t, 2)

	c.handleMessage(context.Background(), []byte(`{"event":"info","version":1}`))

	select {
	case err := <-c.FatalErr():
		if err == nil {
			t.Fatal("expected a non-nil fatal error")
		}
	case <-time.After(time.Second):
		t.Fatal("expected a fatal error on protocol version mismatch")
	}

	if err := c.Send(context.Background(), map[string]any{"event": "noop"}); err == nil {
		t.Fatal("expected Send to refuse after a fatal protocol mismatch")
	}
}

func TestController_ProtocolVersionMatch_NoFatal(t *testing.T) {
	c := newTestController(t, 2)

	c.handleMessage(context.Background(), []byte(`{"event":"info","version":2}`))

	select {
	case err := <-c.FatalErr():
		t.Fatalf("unexpected fatal error on matching protocol version: %v", err)
	default:
	}
}

func TestController_MaintenanceMode_TracksStartAndEnd(t *testing.T) {
	c := newTestController(t, 2)

	c.handleMessage(context.Background(), []byte(`{"event":"info","code":20060}`))
	if !c.IsMaintenanceMode() {
		t.Fatal("expected maintenance mode active after code 20060")
	}

	c.handleMessage(context.Background(), []byte(`{"event":"info","code":20061}`))
	if c.IsMaintenanceMode() {
		t.Fatal("expected maintenance mode cleared after code 20061")
	}
}
