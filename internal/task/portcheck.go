package task

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/slok/taskspipeline/internal/log"
)

const (
	KindPortConnectivity = "PortConnectivityTask"

	defaultDialTimeout = 3 * time.Second
)

// PortConnectivity checks that TCP endpoints are reachable.
type PortConnectivity struct {
	Base

	hosts   []string
	timeout time.Duration
	dialer  Dialer
}

// PortConnectivityConfig is the configuration of a port connectivity task.
type PortConnectivityConfig struct {
	// Hosts are `host:port` endpoints.
	Hosts   []string
	Timeout time.Duration
	Dialer  Dialer
}

// NewPortConnectivity returns a new port connectivity task.
func NewPortConnectivity(name string, cfg PortConnectivityConfig, logger log.Logger) *PortConnectivity {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultDialTimeout
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &net.Dialer{}
	}

	t := &PortConnectivity{
		hosts:   cfg.Hosts,
		timeout: cfg.Timeout,
		dialer:  cfg.Dialer,
	}
	t.init(name, KindPortConnectivity, nil, logger)
	return t
}

// Run connects to all the endpoints, the task only completes when all of
// them are reachable.
func (t *PortConnectivity) Run(ctx context.Context) {
	ctx, ok := t.begin(ctx)
	if !ok {
		return
	}

	logger := t.logger.WithCtxValues(ctx)
	connected := 0
	for _, host := range t.hosts {
		if ctx.Err() != nil {
			t.finish(StatusCancelled)
			return
		}

		if err := t.dial(ctx, host); err != nil {
			logger.Infof("failed to connect to %s: %s", host, err)
			continue
		}
		connected++
	}

	if ctx.Err() != nil {
		t.finish(StatusCancelled)
		return
	}

	t.setMessage(fmt.Sprintf("connected %d/%d", connected, len(t.hosts)))
	if connected != len(t.hosts) {
		t.finish(StatusError)
		return
	}

	t.finish(StatusCompleted)
}

func (t *PortConnectivity) dial(ctx context.Context, host string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	conn, err := t.dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return err
	}

	return conn.Close()
}
