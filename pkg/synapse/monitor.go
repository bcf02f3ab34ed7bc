package synapse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/httpx"
	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/synapseapi"
)

var errStillRunning = errors.New("daemon still running")

// CheckStatus fetches the current status of a backup or restore daemon.
func (c *Client) CheckStatus(ctx context.Context, id string) (*OperationStatus, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: daemon id is required", ErrInvalidArgument)
	}
	resp, err := c.do(ctx, Repository, &httpx.Request{
		Method: http.MethodGet,
		URI:    "/daemonStatus/" + url.PathEscape(id),
		Expect: []int{http.StatusOK},
	})
	if err != nil {
		return nil, err
	}
	return decodeStatus(resp.Body)
}

// AwaitCompletion polls the daemon until it leaves the STARTED state and
// returns that status, whether it completed or failed. A failed poll is
// returned as is. Cancelling ctx abandons the wait and returns ctx.Err().
func (c *Client) AwaitCompletion(ctx context.Context, id string) (*OperationStatus, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: daemon id is required", ErrInvalidArgument)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var last *OperationStatus
	poll := func() error {
		status, err := c.CheckStatus(ctx, id)
		if err != nil {
			return backoff.Permanent(err)
		}
		last = status
		if status.Running() {
			return errStillRunning
		}
		return nil
	}
	notify := func(_ error, wait time.Duration) {
		c.logger.Debug("waiting for daemon",
			"id", id,
			"type", last.Type,
			"current", last.ProgressCurrent,
			"total", last.ProgressTotal,
			"message", last.ProgressMessage,
			"wait", wait)
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(c.pollInterval), ctx)
	if err := backoff.RetryNotifyWithTimer(poll, b, notify, c.pollTimer); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		return nil, err
	}
	c.logger.Debug("daemon finished", "id", id, "status", last.Status)
	return last, nil
}

// StartBackup launches a backup daemon and returns its initial status.
func (c *Client) StartBackup(ctx context.Context) (*OperationStatus, error) {
	return c.startDaemon(ctx, "/startBackupDaemon", map[string]any{})
}

// StartRestore launches a restore daemon reading from sourceURL.
func (c *Client) StartRestore(ctx context.Context, sourceURL string) (*OperationStatus, error) {
	if sourceURL == "" {
		return nil, fmt.Errorf("%w: restore source url is required", ErrInvalidArgument)
	}
	return c.startDaemon(ctx, "/startRestoreDaemon", map[string]any{"url": sourceURL})
}

func (c *Client) startDaemon(ctx context.Context, uri string, payload map[string]any) (*OperationStatus, error) {
	body, err := synapseapi.EncodeJSON(payload)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, Repository, &httpx.Request{
		Method: http.MethodPost,
		URI:    uri,
		Body:   body,
		Expect: []int{http.StatusCreated},
	})
	if err != nil {
		return nil, err
	}
	return decodeStatus(resp.Body)
}

func decodeStatus(body []byte) (*OperationStatus, error) {
	raw, err := decodeEntity(body)
	if err != nil {
		return nil, fmt.Errorf("decode daemon status: %w", err)
	}
	if raw == nil {
		return nil, errors.New("decode daemon status: empty body")
	}
	var status OperationStatus
	if err := decodeInto(raw, &status); err != nil {
		return nil, fmt.Errorf("decode daemon status: %w", err)
	}
	status.Raw = raw
	return &status, nil
}
