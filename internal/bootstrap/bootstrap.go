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

// Package bootstrap wires every raftedge component together into one
// running node: the shared state Store, the raw-socket listener standing
// in for the XDP program, the control-plane FSM, and the admin HTTP
// surface (spec.md §4.G). It owns the process's single context.Context and
// coordinates shutdown of all three long-running loops.
package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/firefly-raftedge/raftedge/internal/admin"
	"github.com/firefly-raftedge/raftedge/internal/audit"
	"github.com/firefly-raftedge/raftedge/internal/clock"
	"github.com/firefly-raftedge/raftedge/internal/config"
	"github.com/firefly-raftedge/raftedge/internal/controlplane"
	"github.com/firefly-raftedge/raftedge/internal/dataplane"
	raftErrors "github.com/firefly-raftedge/raftedge/internal/errors"
	"github.com/firefly-raftedge/raftedge/internal/health"
	"github.com/firefly-raftedge/raftedge/internal/logging"
	"github.com/firefly-raftedge/raftedge/internal/rpc"
	"github.com/firefly-raftedge/raftedge/internal/state"
	raftTLS "github.com/firefly-raftedge/raftedge/internal/tls"
	"github.com/firefly-raftedge/raftedge/internal/wire"
)

// healthScorerThreshold/MinSamples/MaxSamples tune the phi-accrual scorer
// the admin surface uses to annotate the follower list; these aren't
// spec-mandated constants, just conservative defaults for a two-peer
// cluster with a sub-second heartbeat cadence.
const (
	healthScorerThreshold  = 8.0
	healthScorerMinSamples = 4
	healthScorerMaxSamples = 200
)

// Node is one fully wired raftedge process.
type Node struct {
	cfg *config.Config
	clk clock.Clock
	log *logging.Logger

	store    *state.Store
	listener *dataplane.Listener
	fsm      *controlplane.FSM
	emitter  *rpc.Emitter
	admin    *admin.Server
	tlsCfg   *tls.Config

	dataplaneReady atomic.Bool
	fsmAlive       atomic.Bool
}

// New resolves cfg.Peers against the local host's addresses (so a peer
// that happens to name this node's own interface is dropped rather than
// the node voting for itself), truncates to the two fixed Followers/Peers
// slots per spec.md §6, and wires every component against a fresh Store.
func New(cfg *config.Config, clk clock.Clock) (*Node, error) {
	peers, err := resolvePeers(cfg.Peers)
	if err != nil {
		return nil, raftErrors.BootstrapFailure("resolve configured peers", err)
	}

	store := state.NewStore(clk.NowNano(), peers)
	for _, p := range peers {
		if p != 0 {
			_ = store.AddFollower(p)
		}
	}

	emitter, err := rpc.NewEmitter()
	if err != nil {
		return nil, raftErrors.BootstrapFailure("start RPC emitter", err)
	}

	bpfFilter, err := dataplane.DefaultFilter()
	if err != nil {
		emitter.Close()
		return nil, raftErrors.BootstrapFailure("assemble packet filter", err)
	}

	listener, err := dataplane.Attach(cfg.Iface, store, clk, bpfFilter)
	if err != nil {
		emitter.Close()
		return nil, raftErrors.BootstrapFailure("attach data plane", err)
	}

	var tlsCfg *tls.Config
	if cfg.AdminTLS {
		certPath, keyPath := raftTLS.DefaultCertPaths()
		tlsCfg, err = raftTLS.EnsureCertificates(certPath, keyPath, raftTLS.DefaultCertConfig())
		if err != nil {
			listener.Close()
			emitter.Close()
			return nil, raftErrors.BootstrapFailure("prepare admin TLS certificate", err)
		}
	}

	auditLog := audit.NewLog(0)
	fsm := controlplane.New(store, emitter, clk, cfg, auditLog)
	scorer := health.NewScorer(healthScorerThreshold, healthScorerMinSamples, healthScorerMaxSamples)

	n := &Node{
		cfg:      cfg,
		clk:      clk,
		log:      logging.NewLogger("bootstrap"),
		store:    store,
		listener: listener,
		fsm:      fsm,
		emitter:  emitter,
		tlsCfg:   tlsCfg,
	}
	n.admin = admin.New(store, scorer, auditLog, clk, &n.dataplaneReady, &n.fsmAlive)
	return n, nil
}

// Run starts the data-plane listener, the control-plane scheduler, and the
// admin HTTP surface, and blocks until ctx is cancelled, any of the three
// returns an unexpected error, or the FSM reaches cfg.TerminationTerm
// (spec.md §4.C "Termination"), which is treated as a clean shutdown.
func (n *Node) Run(ctx context.Context) error {
	adminLn, err := net.Listen("tcp", n.cfg.AdminAddr)
	if err != nil {
		return raftErrors.BootstrapFailure("start admin listener", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		n.dataplaneReady.Store(true)
		defer n.dataplaneReady.Store(false)
		err := n.listener.Run(gctx)
		if gctx.Err() != nil {
			return nil
		}
		return err
	})

	group.Go(func() error {
		n.fsmAlive.Store(true)
		defer n.fsmAlive.Store(false)
		err := n.fsm.Run(gctx)
		if err == controlplane.ErrTerminated {
			n.log.Info("termination term reached, shutting down")
			cancel()
			return nil
		}
		if gctx.Err() != nil {
			return nil
		}
		return err
	})

	group.Go(func() error {
		err := admin.ListenAndServe(adminLn, n.admin, n.tlsCfg)
		if gctx.Err() != nil {
			return nil
		}
		return err
	})

	group.Go(func() error {
		<-gctx.Done()
		n.listener.Close()
		adminLn.Close()
		return nil
	})

	return group.Wait()
}

// resolvePeers parses up to two dotted-quad addresses from raw, dropping
// any that resolve to a local interface address (this node never treats
// itself as its own Follower/Peer) and silently truncating beyond two
// entries, per spec.md §6's fixed two-slot Peers/Followers tables.
func resolvePeers(raw []string) ([2]uint32, error) {
	var out [2]uint32
	local, err := localIPv4Set()
	if err != nil {
		return out, err
	}

	n := 0
	for _, p := range raw {
		if n >= 2 {
			break
		}
		addr, err := wire.IPv4ToUint32(p)
		if err != nil {
			return out, fmt.Errorf("invalid peer address %q: %w", p, err)
		}
		if local[addr] {
			continue
		}
		out[n] = addr
		n++
	}
	return out, nil
}

// localIPv4Set returns every IPv4 address bound to any local interface, as
// host-order uint32s, for filtering PEERS against self.
func localIPv4Set() (map[uint32]bool, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, fmt.Errorf("enumerate local addresses: %w", err)
	}
	set := make(map[uint32]bool, len(addrs))
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		v4 := ipNet.IP.To4()
		if v4 == nil {
			continue
		}
		addr, err := wire.IPv4ToUint32(v4.String())
		if err != nil {
			continue
		}
		set[addr] = true
	}
	return set, nil
}
