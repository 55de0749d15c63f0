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

package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Quorum != 2 {
		t.Errorf("Expected default quorum 2, got %d", cfg.Quorum)
	}
	if cfg.Iface != "eth0" {
		t.Errorf("Expected default iface 'eth0', got '%s'", cfg.Iface)
	}
	if cfg.AdminAddr != ":8080" {
		t.Errorf("Expected default admin addr ':8080', got '%s'", cfg.AdminAddr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log_level 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.LogJSON != false {
		t.Errorf("Expected default log_json false, got %v", cfg.LogJSON)
	}
	if cfg.TerminationTerm != 100 {
		t.Errorf("Expected default termination term 100, got %d", cfg.TerminationTerm)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"zero quorum", func(c *Config) { c.Quorum = 0 }, true},
		{"inverted election jitter", func(c *Config) { c.ElectionJitterMax = -time.Second }, true},
		{"inverted leader jitter", func(c *Config) { c.LeaderJitterMax = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PEERS", "10.0.0.2,10.0.0.3")
	t.Setenv("RAFTEDGE_IFACE", "wlan0")
	t.Setenv("RAFTEDGE_LOG_LEVEL", "debug")
	t.Setenv("RAFTEDGE_LOG_JSON", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Peers) != 2 || cfg.Peers[0] != "10.0.0.2" || cfg.Peers[1] != "10.0.0.3" {
		t.Errorf("unexpected peers: %v", cfg.Peers)
	}
	if cfg.Iface != "wlan0" {
		t.Errorf("expected iface wlan0, got %s", cfg.Iface)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.LogLevel)
	}
	if !cfg.LogJSON {
		t.Errorf("expected log json true")
	}
}

func TestLoadRejectsInvalidBool(t *testing.T) {
	t.Setenv("RAFTEDGE_ADMIN_TLS", "not-a-bool")
	if _, err := Load(); err == nil {
		t.Error("expected an error for an invalid boolean env var")
	}
}
