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

package bootstrap

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"

	"github.com/firefly-raftedge/raftedge/internal/logging"
)

// mdnsService is the Bonjour/Avahi service name raftedge nodes announce and
// browse for when RAFTEDGE_MDNS=1. Peer discovery here is strictly a
// convenience pre-seed of PEERS before an operator edits the Followers
// table through the admin surface; no running membership protocol exists
// past process start (see DESIGN.md's dropped-modules notes on
// internal/cluster/membership.go).
const (
	mdnsServiceName  = "_raftedge._udp"
	mdnsDomain       = "local."
	mdnsInstanceBase = "raftedge"
	discoverTimeout  = 3 * time.Second
)

// Announce registers this node on the local network via mDNS so peers
// started with RAFTEDGE_MDNS=1 can find it. The returned server must be
// shut down when the node exits.
func Announce(adminPort int) (*mdns.Server, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "raftedge-node"
	}
	info := []string{fmt.Sprintf("admin_port=%d", adminPort)}
	svc, err := mdns.NewMDNSService(
		fmt.Sprintf("%s-%d", mdnsInstanceBase, os.Getpid()),
		mdnsServiceName, mdnsDomain, "", adminPort, nil, info,
	)
	if err != nil {
		return nil, fmt.Errorf("build mdns service record: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: svc})
	if err != nil {
		return nil, fmt.Errorf("start mdns server: %w", err)
	}
	return server, nil
}

// DiscoverPeers browses the local network for other raftedge nodes
// advertising mdnsServiceName and returns their IPv4 addresses as dotted
// quads, deduplicated. It never blocks longer than discoverTimeout.
func DiscoverPeers() []string {
	log := logging.NewLogger("bootstrap")
	entries := make(chan *mdns.ServiceEntry, 8)
	seen := make(map[string]bool)
	var out []string

	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil {
				continue
			}
			addr := e.AddrV4.String()
			if !seen[addr] {
				seen[addr] = true
				out = append(out, addr)
			}
		}
	}()

	err := mdns.Query(&mdns.QueryParam{
		Service: mdnsServiceName,
		Domain:  mdnsDomain,
		Timeout: discoverTimeout,
		Entries: entries,
	})
	close(entries)
	<-done

	if err != nil {
		log.Warn("mdns discovery failed", "error", err)
	}
	return out
}
