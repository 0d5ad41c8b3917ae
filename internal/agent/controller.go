package agent

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"linguacall/internal/api"
	"linguacall/internal/av"
	"linguacall/internal/domain/call"
	"linguacall/internal/push"
	"linguacall/internal/session"
	"linguacall/pkg/logger"
)

// callAPI is the slice of the API client the controller needs.
type callAPI interface {
	ActiveCalls(ctx context.Context) ([]call.Call, error)
	StartCall(ctx context.Context, roomName string, info *api.CustomerInfo) (*call.Call, error)
	EndCall(ctx context.Context, callID string) error
	Queue(ctx context.Context) ([]call.QueueItem, error)
	QueueMetrics(ctx context.Context) (*call.Metrics, error)
}

// pushChannel is the slice of the push client the controller needs.
type pushChannel interface {
	Connect(token string) error
	Disconnect()
	Subscribe(push.Observer)
	OnReconnect(fn func())
	State() push.State
}

// Controller wires the dashboard session together: it feeds the store
// from HTTP responses and push events, owns the current-call lifecycle
// and guarantees the AV engine is released on every path that clears
// the current call.
type Controller struct {
	api         callAPI
	store       *session.Store
	push        pushChannel
	engine      av.Engine
	log         *logger.Logger
	displayName string

	// gen fences teardown: fetches capture it before the request and
	// results are discarded when it moved, so a response resolving
	// after Stop never mutates the store.
	gen atomic.Int64
}

func NewController(apiClient callAPI, store *session.Store, pushClient pushChannel, engine av.Engine, displayName string, log *logger.Logger) *Controller {
	return &Controller{
		api:         apiClient,
		store:       store,
		push:        pushClient,
		engine:      engine,
		log:         log,
		displayName: displayName,
	}
}

// Start loads the initial snapshot and opens the push channel. The
// push client re-invokes Refresh after every reconnect, before event
// delivery resumes.
func (c *Controller) Start(ctx context.Context, token string) error {
	c.push.Subscribe(push.ObserverFunc(c.handleCallUpdate))
	c.push.OnReconnect(func() {
		c.Refresh(context.Background())
	})

	if err := c.Refresh(ctx); err != nil {
		return err
	}
	return c.push.Connect(token)
}

// Refresh re-fetches active calls, queue and metrics. Each failed fetch
// leaves the prior snapshot intact rather than clearing it.
func (c *Controller) Refresh(ctx context.Context) error {
	gen := c.gen.Load()

	calls, err := c.api.ActiveCalls(ctx)
	if err != nil {
		c.log.Warnf("active calls refresh failed: %v", err)
		return err
	}
	metrics, err := c.api.QueueMetrics(ctx)
	if err != nil {
		c.log.Warnf("metrics refresh failed: %v", err)
		return err
	}
	queue, queueErr := c.api.Queue(ctx)

	if c.gen.Load() != gen {
		return nil
	}
	c.store.ReplaceActiveCalls(calls)
	c.store.SetMetrics(*metrics)
	if queueErr == nil {
		c.store.SetQueue(queue)
	}
	return nil
}

// StartCall opens a new call in a fresh room, makes it current and joins
// the AV session. If the join fails the call is ended again so no
// half-open session lingers.
func (c *Controller) StartCall(ctx context.Context, info *api.CustomerInfo) (*call.Call, error) {
	gen := c.gen.Load()
	roomName := "call-" + uuid.New().String()

	started, err := c.api.StartCall(ctx, roomName, info)
	if err != nil {
		return nil, err
	}
	if c.gen.Load() != gen {
		// Torn down while the request was in flight.
		_ = c.api.EndCall(context.Background(), started.ID)
		return nil, nil
	}

	c.store.SetCurrentCall(started)
	if err := c.engine.Join(started.RoomName, c.displayName); err != nil {
		c.store.SetCurrentCall(nil)
		_ = c.engine.Leave()
		_ = c.api.EndCall(ctx, started.ID)
		return nil, err
	}
	return started, nil
}

// EndCall terminates the current call. The current-call slot is cleared
// and the AV session released on every path, even when the end request
// itself fails.
func (c *Controller) EndCall(ctx context.Context) error {
	current := c.store.CurrentCall()
	if current == nil {
		return nil
	}
	defer func() {
		c.store.SetCurrentCall(nil)
		if err := c.engine.Leave(); err != nil {
			c.log.Warnf("av leave failed: %v", err)
		}
	}()

	if err := c.api.EndCall(ctx, current.ID); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Stop tears the dashboard session down: push delivery stops, late HTTP
// results are discarded and a joined AV session is released.
func (c *Controller) Stop() {
	c.gen.Add(1)
	c.push.Disconnect()
	if c.store.CurrentCall() != nil {
		c.store.SetCurrentCall(nil)
		_ = c.engine.Leave()
	}
}

// PushState exposes the channel state for the reconnecting indicator.
func (c *Controller) PushState() push.State {
	return c.push.State()
}

func (c *Controller) handleCallUpdate(callID string, updates call.Patch) {
	if updates.Status != nil && updates.Status.Terminal() {
		wasCurrent := false
		if current := c.store.CurrentCall(); current != nil && current.ID == callID {
			wasCurrent = true
		}
		c.store.Remove(callID)
		if wasCurrent {
			_ = c.engine.Leave()
		}
		return
	}
	c.store.ApplyUpdate(callID, updates)
}
