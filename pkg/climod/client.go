/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package climod

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FollowerRow mirrors internal/admin's GET /followers/list response shape.
type FollowerRow struct {
	IP                string  `json:"ip"`
	LastHeartbeatSend int64   `json:"last_heartbeat_send_ns"`
	HasLatency        bool    `json:"has_latency"`
	LatencyNs         int64   `json:"latency_ns,omitempty"`
	Phi               float64 `json:"phi"`
	Failed            bool    `json:"failed"`
}

// AuditEvent mirrors internal/audit.Event as returned by GET /audit/recent.
type AuditEvent struct {
	Time   time.Time         `json:"time"`
	Type   string            `json:"type"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Client is a thin HTTP client over one raftedge node's admin surface.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a Client against addr (host:port). insecure disables TLS
// certificate verification, for talking to a node's self-signed dev cert.
func NewClient(addr string, useTLS, insecure bool) *Client {
	scheme := "http"
	transport := http.DefaultTransport
	if useTLS {
		scheme = "https"
		if insecure {
			transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
		}
	}
	return &Client{
		baseURL: fmt.Sprintf("%s://%s", scheme, addr),
		http:    &http.Client{Timeout: 5 * time.Second, Transport: transport},
	}
}

// ListFollowers calls GET /followers/list.
func (c *Client) ListFollowers() ([]FollowerRow, error) {
	resp, err := c.http.Get(c.baseURL + "/followers/list")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readBody(resp.Body))
	}
	var rows []FollowerRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rows, nil
}

// AddFollower calls POST /followers/add with {ip}.
func (c *Client) AddFollower(ip string) error {
	return c.postIP("/followers/add", ip)
}

// RemoveFollower calls POST /followers/delete with {ip}.
func (c *Client) RemoveFollower(ip string) error {
	return c.postIP("/followers/delete", ip)
}

func (c *Client) postIP(path, ip string) error {
	body, _ := json.Marshal(struct {
		IP string `json:"ip"`
	}{IP: ip})
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readBody(resp.Body))
	}
	return nil
}

// RecentAudit calls GET /audit/recent.
func (c *Client) RecentAudit() ([]AuditEvent, error) {
	resp, err := c.http.Get(c.baseURL + "/audit/recent")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readBody(resp.Body))
	}
	var events []AuditEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return events, nil
}

// Healthz calls GET /healthz and reports whether the node reported ready.
func (c *Client) Healthz() (bool, error) {
	resp, err := c.http.Get(c.baseURL + "/healthz")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(r)
	return string(b)
}
