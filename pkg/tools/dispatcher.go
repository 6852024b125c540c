package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/entrhq/mcp-bridge/pkg/logging"
)

// DefaultTimeout bounds tools that do not provide their own timeout.
const DefaultTimeout = 30 * time.Second

// Dispatcher validates and runs tool calls, turning every outcome into a
// Result. Nothing a tool does (error, panic, overrun) escapes as a Go error.
type Dispatcher struct {
	registry       *Registry
	defaultTimeout time.Duration
	logger         *logging.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDefaultTimeout overrides DefaultTimeout.
func WithDefaultTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.defaultTimeout = d
		}
	}
}

// NewDispatcher creates a dispatcher over registry.
func NewDispatcher(registry *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:       registry,
		defaultTimeout: DefaultTimeout,
		logger:         logging.NewLogger("dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the tools this dispatcher serves.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

type outcome struct {
	data interface{}
	err  error
}

// Dispatch runs the named tool. Arguments failing schema validation never
// reach the tool.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args json.RawMessage) Result {
	tool, ok := d.registry.Get(name)
	if !ok {
		metricToolCalls.WithLabelValues("unknown", "invalid").Inc()
		return Failure(fmt.Errorf("%w: %s", ErrUnknownTool, name))
	}

	if err := d.registry.Validate(name, args); err != nil {
		metricToolCalls.WithLabelValues(name, "invalid").Inc()
		d.logger.Debugf("Rejected %s: %v", name, err)
		return Failure(err)
	}

	timeout := d.timeoutFor(tool)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Errorf("Tool %s panicked: %v\n%s", name, r, debug.Stack())
				done <- outcome{err: fmt.Errorf("%s failed: internal error: %v", name, r)}
			}
		}()
		data, err := tool.Execute(ctx, args)
		done <- outcome{data: data, err: err}
	}()

	var res Result
	label := "success"
	select {
	case out := <-done:
		if out.err != nil {
			label = "error"
			res = Failure(out.err)
		} else {
			res = Success(out.data)
		}
	case <-ctx.Done():
		// the action keeps running until its own library timeout fires
		label = "timeout"
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %s exceeded %s", ErrTimeout, name, timeout)
		}
		res = Failure(err)
	}

	elapsed := time.Since(started)
	metricToolCalls.WithLabelValues(name, label).Inc()
	metricToolDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	if res.Success {
		d.logger.Debugf("Tool %s succeeded in %s", name, elapsed.Round(time.Millisecond))
	} else {
		d.logger.Warnf("Tool %s failed in %s: %s", name, elapsed.Round(time.Millisecond), res.Error)
	}
	return res
}

func (d *Dispatcher) timeoutFor(tool Tool) time.Duration {
	if tp, ok := tool.(TimeoutProvider); ok {
		if t := tp.Timeout(); t > 0 {
			return t
		}
	}
	return d.defaultTimeout
}
