package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrCopyTimeout is returned when the async copy monitor did not report
// completion within the bounded poll budget.
var ErrCopyTimeout = errors.New("copie du document non terminée dans le délai imparti")

type copyRequest struct {
	ParentReference struct {
		DriveID string `json:"driveId"`
		ID      string `json:"id"`
	} `json:"parentReference"`
	Name string `json:"name"`
}

type copyStatus struct {
	Status     string `json:"status"`
	ResourceID string `json:"resourceId"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Copy duplicates an item inside the maintenance folder under newName.
// The remote store answers 202 with a monitor URL; the monitor is polled
// at PollInterval, capped at MaxPolls attempts and by ctx. On completion
// the new item is resolved by name from a fresh folder listing.
func (c *Client) Copy(ctx context.Context, itemID, newName string) (Item, error) {
	var cr copyRequest
	cr.ParentReference.DriveID = c.cfg.DriveID
	cr.ParentReference.ID = c.cfg.FolderID
	cr.Name = newName

	payload, err := json.Marshal(cr)
	if err != nil {
		return Item{}, fmt.Errorf("failed to marshal copy request: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return Item{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.driveURL("items", itemID, "copy"), bytes.NewReader(payload))
	if err != nil {
		return Item{}, fmt.Errorf("failed to create copy request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "respond-async")

	start := time.Now()
	resp, err := c.client.Do(req)
	c.observe("copy", start, err != nil || (resp != nil && resp.StatusCode != http.StatusAccepted))
	if err != nil {
		return Item{}, fmt.Errorf("copy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return Item{}, remoteError(resp)
	}

	monitorURL := resp.Header.Get("Location")
	if monitorURL == "" {
		return Item{}, fmt.Errorf("copy accepted without a monitor URL")
	}

	if err := c.waitForCopy(ctx, monitorURL); err != nil {
		return Item{}, err
	}

	// The monitor reports only a resource id; resolve the item by its name.
	items, err := c.ListChildren(ctx)
	if err != nil {
		return Item{}, err
	}
	item, ok := FindChild(items, newName)
	if !ok {
		return Item{}, fmt.Errorf("copy completed but %q not found in folder", newName)
	}
	return item, nil
}

func (c *Client) waitForCopy(ctx context.Context, monitorURL string) error {
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < c.MaxPolls; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if c.metrics != nil {
			c.metrics.CopyPollsTotal.Inc()
		}
		status, err := c.pollCopy(ctx, monitorURL)
		if err != nil {
			return err
		}
		switch status.Status {
		case "completed":
			return nil
		case "failed":
			if status.Error != nil {
				return fmt.Errorf("copy failed: %s", status.Error.Message)
			}
			return fmt.Errorf("copy failed")
		}
	}
	return ErrCopyTimeout
}

func (c *Client) pollCopy(ctx context.Context, monitorURL string) (copyStatus, error) {
	// The monitor URL is pre-authorized; no bearer token is attached.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, monitorURL, nil)
	if err != nil {
		return copyStatus{}, fmt.Errorf("failed to create monitor request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return copyStatus{}, fmt.Errorf("copy monitor request failed: %w", err)
	}
	defer resp.Body.Close()

	var status copyStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return copyStatus{}, fmt.Errorf("failed to decode copy status: %w", err)
	}
	return status, nil
}
