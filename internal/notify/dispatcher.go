// Package notify delivers fired alerts to the user outside the app:
// a push-gateway notification when the gateway accepts us, an in-app
// fallback when it does not, and a best-effort audible cue alongside.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PermissionState is the push gateway's answer to a permission probe
type PermissionState string

const (
	// PermissionGranted means the gateway accepts notifications from us
	PermissionGranted PermissionState = "granted"
	// PermissionDenied means the gateway rejected us; sends become no-ops
	PermissionDenied PermissionState = "denied"
	// PermissionDefault means we have not asked yet, or the answer was inconclusive
	PermissionDefault PermissionState = "default"
)

// FallbackNotifier delivers a notification through an in-app channel when
// the push gateway path is unavailable
type FallbackNotifier interface {
	Notify(ctx context.Context, title, actionURL string) error
}

// Dispatcher sends alert notifications through a push gateway with an
// in-app fallback. Permission is probed once and cached; a denied gateway
// turns every Send into a silent no-op.
type Dispatcher struct {
	client      *http.Client
	gatewayURL  string
	topic       string
	soundCueURL string
	fallback    FallbackNotifier
	logger      *zap.Logger

	mu         sync.Mutex
	permission PermissionState
}

// NewDispatcher creates a dispatcher. gatewayURL and topic address the push
// gateway; soundCueURL may be empty to disable the audio cue; fallback may
// be nil to disable the in-app path.
func NewDispatcher(gatewayURL, topic, soundCueURL string, fallback FallbackNotifier, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		client:      &http.Client{Timeout: 10 * time.Second},
		gatewayURL:  strings.TrimRight(gatewayURL, "/"),
		topic:       topic,
		soundCueURL: soundCueURL,
		fallback:    fallback,
		logger:      logger,
		permission:  PermissionDefault,
	}
}

// RequestPermission probes the push gateway and caches the result.
// A 2xx answer grants, 401/403 denies, anything else leaves the state
// at default so a later probe can retry.
func (d *Dispatcher) RequestPermission(ctx context.Context) PermissionState {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, d.gatewayURL+"/"+d.topic, nil)
	if err != nil {
		d.logger.Warn("permission_probe_failed", zap.Error(err))
		return d.setPermission(PermissionDefault)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("permission_probe_failed", zap.Error(err))
		return d.setPermission(PermissionDefault)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			_ = err
		}
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return d.setPermission(PermissionGranted)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return d.setPermission(PermissionDenied)
	default:
		d.logger.Warn("permission_probe_inconclusive", zap.Int("status", resp.StatusCode))
		return d.setPermission(PermissionDefault)
	}
}

// Permission returns the cached permission state
func (d *Dispatcher) Permission() PermissionState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission
}

func (d *Dispatcher) setPermission(state PermissionState) PermissionState {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.permission = state
	return state
}

// Send delivers a notification carrying actionURL as the click target.
// Without granted permission it is a silent no-op. The push gateway is
// tried first; on failure the in-app fallback takes over. The audio cue
// runs alongside either path and its failures are only logged.
func (d *Dispatcher) Send(ctx context.Context, title, actionURL string) error {
	if d.Permission() != PermissionGranted {
		d.logger.Debug("notification_skipped_no_permission", zap.String("title", title))
		return nil
	}

	d.playSoundCue(ctx)

	pushErr := d.pushGateway(ctx, title, actionURL)
	if pushErr == nil {
		d.logger.Info("notification_sent",
			zap.String("title", title),
			zap.String("channel", "push"))
		return nil
	}
	d.logger.Warn("push_gateway_failed", zap.Error(pushErr))

	if d.fallback == nil {
		return pushErr
	}
	if err := d.fallback.Notify(ctx, title, actionURL); err != nil {
		return fmt.Errorf("push failed (%v); fallback failed: %w", pushErr, err)
	}
	d.logger.Info("notification_sent",
		zap.String("title", title),
		zap.String("channel", "fallback"))
	return nil
}

func (d *Dispatcher) pushGateway(ctx context.Context, title, actionURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.gatewayURL+"/"+d.topic, strings.NewReader(title))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("X-Title", "Taskward")
	req.Header.Set("X-Click", actionURL)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach push gateway: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			_ = err
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// playSoundCue triggers the audible cue. Playback failures are expected
// (the cue endpoint may be blocked or absent) and never propagate.
func (d *Dispatcher) playSoundCue(ctx context.Context) {
	if d.soundCueURL == "" {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.soundCueURL, nil)
	if err != nil {
		d.logger.Warn("sound_cue_failed", zap.Error(err))
		return
	}
	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("sound_cue_failed", zap.Error(err))
		return
	}
	if err := resp.Body.Close(); err != nil {
		_ = err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		d.logger.Warn("sound_cue_failed", zap.Int("status", resp.StatusCode))
	}
}
