package dataplane

import (
	"context"
	"os"
	"sync"

	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"

	raftErrors "github.com/firefly-raftedge/raftedge/internal/errors"
	"github.com/firefly-raftedge/raftedge/internal/clock"
	"github.com/firefly-raftedge/raftedge/internal/logging"
	"github.com/firefly-raftedge/raftedge/internal/state"
)

// maxFrameLen bounds one read off the raw socket; large enough for a
// jumbo-free Ethernet frame with room to spare.
const maxFrameLen = 2048

// Listener attaches to one network interface via a raw AF_PACKET socket and
// runs the classifier (Handle) over every frame it sees, standing in for
// the XDP program attach point described in SPEC_FULL.md §1.
type Listener struct {
	iface string
	file  *os.File
	view  state.DataPlaneView
	clk   clock.Clock
	log   *logging.Logger

	writeMu sync.Mutex
}

// htons converts a host-order uint16 to network order, matching the
// kernel's expectation for sll_protocol / ETH_P_ALL in socket(2).
func htons(v uint16) uint16 {
	return (v << 8) | (v >> 8)
}

// Attach opens a raw AF_PACKET/SOCK_RAW socket bound to iface and, if
// filter is non-empty, installs it as a classic-BPF pre-filter via
// SO_ATTACH_FILTER so the kernel discards frames the classifier would pass
// through anyway before they reach user space.
func Attach(iface string, view state.DataPlaneView, clk clock.Clock, filter []bpf.RawInstruction) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return nil, raftErrors.AttachFailed(iface, err)
	}
	// Non-blocking so os.NewFile below registers the fd with the runtime
	// netpoller: Read/Write behave like any other blocking Go I/O call, and
	// closing the *os.File from another goroutine unblocks a pending Read.
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, raftErrors.AttachFailed(iface, err)
	}

	ifi, err := netInterfaceByName(iface)
	if err != nil {
		unix.Close(fd)
		return nil, raftErrors.AttachFailed(iface, err)
	}

	addr := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  ifi,
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, raftErrors.AttachFailed(iface, err)
	}

	if len(filter) > 0 {
		if err := attachClassicFilter(fd, filter); err != nil {
			unix.Close(fd)
			return nil, raftErrors.AttachFailed(iface, err)
		}
	}

	return &Listener{
		iface: iface,
		file:  os.NewFile(uintptr(fd), "raftedge-dataplane-"+iface),
		view:  view,
		clk:   clk,
		log:   logging.NewLogger("dataplane"),
	}, nil
}

// Run reads frames off the socket until ctx is cancelled or a read error
// occurs, classifying and, on VerdictReflect, writing the rewritten frame
// back out the same socket. It never blocks the classifier itself: the
// read/write pair around Handle mirrors the single bounded callback the
// reference design runs per packet.
func (l *Listener) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.file.Close()
	}()

	buf := make([]byte, maxFrameLen)
	for {
		n, err := l.file.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return raftErrors.AttachFailed(l.iface, err)
		}

		frameBuf := append([]byte(nil), buf[:n]...)
		switch Handle(l.view, frameBuf, l.clk.NowNano()) {
		case VerdictReflect:
			l.writeMu.Lock()
			_, werr := l.file.Write(frameBuf)
			l.writeMu.Unlock()
			if werr != nil {
				l.log.Warn("reflect write failed", "iface", l.iface, "error", werr)
			}
		case VerdictAbort:
			l.log.Debug("aborted malformed frame", "iface", l.iface, "bytes", n)
		}
	}
}

// Close releases the underlying socket.
func (l *Listener) Close() error {
	return l.file.Close()
}

// attachClassicFilter installs a compiled classic-BPF program as a
// SO_ATTACH_FILTER socket filter, the standard Linux mechanism for
// pushing packet selection into the kernel ahead of a raw socket read.
func attachClassicFilter(fd int, filter []bpf.RawInstruction) error {
	prog := unix.SockFprog{
		Len:    uint16(len(filter)),
		Filter: sockFilterPointer(filter),
	}
	return unix.SetsockoptSockFprog(fd, unix.SOL_SOCKET, unix.SO_ATTACH_FILTER, &prog)
}
