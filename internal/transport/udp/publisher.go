// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	applog "stripchart/internal/log"
	"stripchart/internal/plotter"
)

// StatsProvider supplies the renderer totals to publish. Session satisfies it.
type StatsProvider interface {
	Stats() plotter.Stats
}

// PacketSize is the encoded size of a Packet in bytes.
const PacketSize = 4 + 8 + 8 + 8 + 8 + 8

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Updates           | uint64         | 8            | Renderer updates so far |
| Columns           | uint64         | 8            | Columns drawn so far    |
| Redraws           | uint64         | 8            | Full redraws so far     |
| Last Count        | int64          | 8            | Producer sample count   |
+-----------------------------------------------------------------------------+
*/

// Packet is one telemetry datagram.
type Packet struct {
	Seq       uint32
	Timestamp int64
	Updates   uint64
	Columns   uint64
	Redraws   uint64
	LastCount int64
}

// ParsePacket decodes a datagram produced by UDPPublisher.
func ParsePacket(b []byte) (Packet, error) {
	var p Packet
	if len(b) != PacketSize {
		return p, fmt.Errorf("invalid packet length %d, want %d", len(b), PacketSize)
	}
	err := binary.Read(bytes.NewReader(b), binary.BigEndian, &p)
	return p, err
}

// UDPPublisher periodically packs renderer statistics into a Packet and
// sends it with a UDPSender. It runs in a separate goroutine managed by
// Start and Stop.
type UDPPublisher struct {
	sender   *UDPSender
	stats    StatsProvider
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // Protects ticker and doneChan during Start/Stop.

	sequenceNum  uint32
	packetBuffer *bytes.Buffer
	now          func() time.Time
}

// NewUDPPublisher creates and initializes a new UDPPublisher. If the
// interval is invalid (<= 0), it defaults to 100ms.
func NewUDPPublisher(interval time.Duration, sender *UDPSender, stats StatsProvider) (*UDPPublisher, error) {
	if sender == nil {
		return nil, errors.New("UDPPublisher: UDP sender cannot be nil")
	}
	if stats == nil {
		return nil, errors.New("UDPPublisher: stats provider cannot be nil")
	}

	if interval <= 0 {
		interval = 100 * time.Millisecond
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}
	applog.Infof("UDPPublisher: Initializing (Interval: %s)", interval)

	return &UDPPublisher{
		sender:       sender,
		stats:        stats,
		interval:     interval,
		packetBuffer: bytes.NewBuffer(make([]byte, 0, PacketSize)),
		now:          time.Now,
	}, nil
}

// Start begins the periodic publishing process. Calling Start while
// running is a no-op.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Debugf("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to terminate and waits for it to
// exit. It is safe to call Stop multiple times.
func (p *UDPPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("UDPPublisher: Publisher goroutine finished.")
	return nil
}

// Encode packs the current statistics into the reusable buffer. The
// returned slice is valid until the next call.
func (p *UDPPublisher) Encode() ([]byte, error) {
	s := p.stats.Stats()
	p.sequenceNum++
	pkt := Packet{
		Seq:       p.sequenceNum,
		Timestamp: p.now().UnixNano(),
		Updates:   s.Updates,
		Columns:   s.Columns,
		Redraws:   s.Redraws,
		LastCount: s.LastCount,
	}

	p.packetBuffer.Reset()
	if err := binary.Write(p.packetBuffer, binary.BigEndian, &pkt); err != nil {
		return nil, err
	}
	return p.packetBuffer.Bytes(), nil
}

func (p *UDPPublisher) buildAndSendPacket() {
	b, err := p.Encode()
	if err != nil {
		applog.Errorf("UDPPublisher: Error packing data into binary buffer: %v", err)
		return
	}
	if err := p.sender.Send(b); err != nil {
		return
	}
	applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, len(b))
}

// Close implements io.Closer.
func (p *UDPPublisher) Close() error {
	return p.Stop()
}

var _ interface{ Close() error } = (*UDPPublisher)(nil)
