// Package rpc implements the RPC emitter of spec.md §4.D: one shared
// outbound UDP socket that serializes a term as an 8-byte big-endian
// payload to the vote-request or heartbeat-request port on each configured
// peer.
package rpc

import (
	"context"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"

	raftErrors "github.com/firefly-raftedge/raftedge/internal/errors"
	"github.com/firefly-raftedge/raftedge/internal/wire"
)

// sendBufferBytes is the outbound socket's send buffer size, per spec.md
// §4.D.
const sendBufferBytes = 4096

// Emitter owns the single outbound UDP socket shared by every RPC the
// control plane sends. Per spec.md §5 ("blocking send_to on the shared UDP
// socket, serialized by a lock around the socket so sends do not interleave
// bytes"), all sends go through sendMu.
type Emitter struct {
	conn   *net.UDPConn
	sendMu sync.Mutex
}

// NewEmitter binds the shared outbound socket to 0.0.0.0:0 (spec.md §4.D)
// and sets its send buffer.
func NewEmitter() (*Emitter, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, raftErrors.BootstrapFailure("failed to bind RPC emitter socket", err)
	}
	if err := conn.SetWriteBuffer(sendBufferBytes); err != nil {
		conn.Close()
		return nil, raftErrors.BootstrapFailure("failed to set RPC emitter send buffer", err)
	}
	return &Emitter{conn: conn}, nil
}

// Broadcast sends an 8-byte big-endian term payload to port on every
// non-zero peer in peers. Per spec.md §4.D, peer==0 slots are skipped and
// sends may proceed concurrently; a failed send is fatal for the whole
// broadcast (the caller's tick aborts and re-examines state next tick).
func (e *Emitter) Broadcast(ctx context.Context, peers [2]uint32, port wire.Port, term uint64) error {
	g, ctx := errgroup.WithContext(ctx)
	payload := wire.EncodeTerm(term)

	for _, peer := range peers {
		if peer == 0 {
			continue
		}
		peer := peer
		g.Go(func() error {
			return e.send(ctx, peer, port, payload)
		})
	}
	return g.Wait()
}

func (e *Emitter) send(ctx context.Context, peer uint32, port wire.Port, payload []byte) error {
	addr := &net.UDPAddr{IP: net.IP(uint32ToBytes(peer)), Port: int(port)}

	e.sendMu.Lock()
	defer e.sendMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		e.conn.SetWriteDeadline(deadline)
	}
	if _, err := e.conn.WriteToUDP(payload, addr); err != nil {
		return raftErrors.SendFailure(addr.String(), err)
	}
	return nil
}

// Close releases the outbound socket.
func (e *Emitter) Close() error {
	return e.conn.Close()
}

func uint32ToBytes(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
