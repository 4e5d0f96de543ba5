package device

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// maxDirectorySize bounds the device list body read by Fetch.
const maxDirectorySize = 1 << 20

// Repository is the list of devices the directory reports online.
// Observers run after every successful update.
type Repository struct {
	mu        sync.RWMutex
	devices   []Info
	observers []func()
	client    *http.Client
}

// NewRepository creates an empty repository. A nil client uses a client with
// a ten second timeout.
func NewRepository(client *http.Client) *Repository {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Repository{client: client}
}

// Update replaces the device list with the JSON array in data.
func (r *Repository) Update(data []byte) error {
	var devices []Info
	if err := json.Unmarshal(data, &devices); err != nil {
		return fmt.Errorf("failed to decode device list: %w", err)
	}
	r.replace(devices)
	return nil
}

// Set replaces the device list.
func (r *Repository) Set(devices []Info) {
	r.replace(append([]Info(nil), devices...))
}

func (r *Repository) replace(devices []Info) {
	r.mu.Lock()
	r.devices = devices
	observers := append([]func(){}, r.observers...)
	r.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Repository.Update",
		"devices":  len(devices),
	}).Debug("Device list updated")

	for _, observe := range observers {
		observe()
	}
}

// Devices returns a copy of the current list.
func (r *Repository) Devices() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Info(nil), r.devices...)
}

// Observe registers fn to run after each update.
func (r *Repository) Observe(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Fetch downloads the online device list from url (for example
// http://host:8080/api/online_devices) and applies it with Update.
func (r *Repository) Fetch(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Repository.Fetch",
			"url":      url,
			"error":    err.Error(),
		}).Warn("Failed to fetch device list")
		return fmt.Errorf("failed to fetch device list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch device list: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDirectorySize))
	if err != nil {
		return fmt.Errorf("failed to read device list: %w", err)
	}
	return r.Update(body)
}
