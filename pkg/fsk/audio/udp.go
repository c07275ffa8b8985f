package audio

import (
	"context"
	"fmt"
	"net"
	"time"
)

const maxDatagram = 65536

// UDPChannel exchanges raw PCM blocks with a single peer over UDP, one
// block per datagram.  There is no sequencing or retransmission; the modem
// layer already tolerates a noisy line, and a dropped datagram is just a
// gap in the audio.
type UDPChannel struct {
	conn *net.UDPConn
	peer *net.UDPAddr
}

// NewUDPChannel listens on listenAddr and sends toward peerAddr, both in
// "host:port" form.  peerAddr may be empty for a listen-only channel that
// discards writes until the first datagram reveals the peer.
func NewUDPChannel(listenAddr, peerAddr string) (*UDPChannel, error) {
	laddr, err := net.ResolveUDPAddr("udp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("resolving listen address: %w", err)
	}

	var peer *net.UDPAddr
	if peerAddr != "" {
		peer, err = net.ResolveUDPAddr("udp", peerAddr)
		if err != nil {
			return nil, fmt.Errorf("resolving peer address: %w", err)
		}
	}

	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}

	return &UDPChannel{conn: conn, peer: peer}, nil
}

func (u *UDPChannel) ReadBlock(ctx context.Context) (Block, error) {
	buf := make([]byte, maxDatagram)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Short deadline so cancellation is observed between datagrams.
		if err := u.conn.SetReadDeadline(time.Now().Add(250 * time.Millisecond)); err != nil {
			return nil, err
		}

		n, addr, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				continue
			}
			return nil, ErrHangup
		}
		if u.peer == nil {
			u.peer = addr
		}

		return bytesToBlock(buf[:n]), nil
	}
}

func (u *UDPChannel) WriteBlock(ctx context.Context, b Block) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.peer == nil {
		return nil
	}
	_, err := u.conn.WriteToUDP(blockToBytes(b), u.peer)
	return err
}

func (u *UDPChannel) Close() error {
	return u.conn.Close()
}
