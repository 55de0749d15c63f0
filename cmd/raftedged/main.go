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

// raftedged is one cluster member: it attaches the data-plane packet
// handler to a network interface, runs the control-plane role FSM, and
// serves the admin HTTP surface, all wired together by internal/bootstrap.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/firefly-raftedge/raftedge/internal/bootstrap"
	"github.com/firefly-raftedge/raftedge/internal/clock"
	"github.com/firefly-raftedge/raftedge/internal/config"
	"github.com/firefly-raftedge/raftedge/internal/logging"
)

func main() {
	iface := flag.String("iface", "", "network interface to attach to (overrides RAFTEDGE_IFACE)")
	adminAddr := flag.String("admin-addr", "", "admin HTTP listen address (overrides RAFTEDGE_ADMIN_ADDR)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (overrides RAFTEDGE_LOG_LEVEL)")
	logJSON := flag.Bool("log-json", false, "emit logs as JSON")
	mdnsSeed := flag.Bool("mdns-seed", false, "pre-seed PEERS via an mDNS discovery pass before starting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "raftedged: config: %v\n", err)
		os.Exit(1)
	}
	if *iface != "" {
		cfg.Iface = *iface
	}
	if *adminAddr != "" {
		cfg.AdminAddr = *adminAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logJSON {
		cfg.LogJSON = true
	}

	logging.SetGlobalLevel(logging.ParseLevel(cfg.LogLevel))
	logging.SetJSONMode(cfg.LogJSON)
	log := logging.NewLogger("main")

	if (*mdnsSeed || cfg.MDNS) && len(cfg.Peers) == 0 {
		log.Info("running mdns discovery pass to pre-seed peers")
		if discovered := bootstrap.DiscoverPeers(); len(discovered) > 0 {
			log.Info("mdns discovery found candidate peers", "peers", discovered)
			cfg.Peers = discovered
		} else {
			log.Warn("mdns discovery found no peers; PEERS must be set by hand or via the admin surface")
		}
	}

	clk := clock.NewSystemClock()
	node, err := bootstrap.New(cfg, clk)
	if err != nil {
		log.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	var mdnsServer interface{ Shutdown() error }
	if cfg.MDNS {
		_, _, addrPort := splitAdminAddr(cfg.AdminAddr)
		if srv, err := bootstrap.Announce(addrPort); err != nil {
			log.Warn("mdns announce failed", "error", err)
		} else {
			mdnsServer = srv
			defer mdnsServer.Shutdown()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("raftedge node starting", "iface", cfg.Iface, "admin_addr", cfg.AdminAddr, "peers", cfg.Peers)
	if err := node.Run(ctx); err != nil {
		log.Error("node exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("raftedge node stopped")
}

// splitAdminAddr extracts a numeric port from an address of the form
// ":8080" or "0.0.0.0:8080" for mDNS announcement, defaulting to 0 (let
// the OS pick) if the address can't be parsed as host:port.
func splitAdminAddr(addr string) (host string, rawPort string, port int) {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			host, rawPort = addr[:i], addr[i+1:]
			break
		}
	}
	port = 0
	for _, c := range rawPort {
		if c < '0' || c > '9' {
			return host, rawPort, 0
		}
		port = port*10 + int(c-'0')
	}
	return host, rawPort, port
}
