package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/wavetools/slxd/protocol"
)

// SampleListener is notified for every incoming metering line.
type SampleListener interface {
	Sample(sample Sample)
}

// Meter consumes the SAMPLE stream of a receiver on a dedicated
// connection, keeping asynchronous lines away from command/response
// traffic. Incoming samples are forwarded to all registered listeners and
// to the Samples channel; the channel is lossy, a slow consumer misses
// samples instead of stalling the stream.
type Meter struct {
	client  *Client
	samples chan Sample
	closed  chan struct{}
	done    chan struct{}

	listenersLock sync.Mutex
	listeners     []SampleListener

	closeOnce sync.Once
}

// OpenMeter connects a metering stream to the receiver at the given host
// and port. Port 0 selects the default port. The stream carries no samples
// until Start enables metering for at least one channel.
func OpenMeter(host string, port int, listeners ...SampleListener) (*Meter, error) {
	client := &Client{}
	if err := client.Connect(host, port); err != nil {
		return nil, err
	}

	result := &Meter{
		client:    client,
		samples:   make(chan Sample, 16),
		closed:    make(chan struct{}),
		done:      make(chan struct{}),
		listeners: listeners,
	}
	go result.readLoop()
	return result, nil
}

// Notify registers another listener for incoming samples.
func (m *Meter) Notify(listener SampleListener) {
	m.listenersLock.Lock()
	defer m.listenersLock.Unlock()
	m.listeners = append(m.listeners, listener)
}

// Samples returns the channel carrying the incoming samples. The channel
// is closed when the stream ends.
func (m *Meter) Samples() <-chan Sample {
	return m.samples
}

// Start enables metering for a channel at the given rate in milliseconds.
func (m *Meter) Start(channel, rateMs int) error {
	if err := validateChannel(channel); err != nil {
		return err
	}
	if rateMs < 1 || rateMs > 99999 {
		return fmt.Errorf("%w: metering rate %d ms out of range 1..99999", ErrInvalidArgument, rateMs)
	}
	return m.send(channel, rateMs)
}

// Stop cancels the metering of a channel.
func (m *Meter) Stop(channel int) error {
	if err := validateChannel(channel); err != nil {
		return err
	}
	return m.send(channel, 0)
}

// Close stops the stream, disconnects, and closes the Samples channel.
func (m *Meter) Close() {
	m.closeOnce.Do(func() {
		close(m.closed)
		// Closing the socket unblocks the read loop; the fields are
		// released only after the loop finished with them.
		if m.client.conn != nil {
			m.client.conn.Close()
		}
		<-m.done
		m.client.Disconnect()
	})
}

// send writes a METER_RATE command without awaiting the acknowledgement,
// the read loop swallows it along with any other non-SAMPLE line.
func (m *Meter) send(channel, rateMs int) error {
	command, err := protocol.Build(protocol.Set, protocol.PropMeterRate, channel, fmt.Sprintf("%05d", rateMs))
	if err != nil {
		return err
	}

	conn := m.client.conn
	if conn == nil {
		return ErrNotConnected
	}
	if err := conn.SetWriteDeadline(time.Now().Add(m.client.timeout())); err != nil {
		return fmt.Errorf("cannot set deadline: %w", err)
	}
	if _, err := fmt.Fprintf(conn, "%s\r\n", command); err != nil {
		return fmt.Errorf("cannot send command %q: %w", command, wrapTimeout(err))
	}
	return nil
}

func (m *Meter) readLoop() {
	defer close(m.done)
	defer close(m.samples)

	// No read deadline here, samples arrive only while metering is
	// active and Close unblocks the read by closing the connection.
	m.client.conn.SetReadDeadline(time.Time{})
	for {
		line, err := m.client.readLine()
		if err != nil {
			return
		}
		response, err := protocol.Parse(line)
		if err != nil || response.Kind != protocol.Sample || len(response.Values) != 5 {
			continue
		}

		sample := Sample{
			Channel:         response.Channel,
			PeakRaw:         response.Values[0],
			RMSRaw:          response.Values[1],
			RSSIAntenna1Raw: response.Values[2],
			RSSIAntenna2Raw: response.Values[3],
			Antenna:         response.Values[4],
		}
		m.emit(sample)

		select {
		case m.samples <- sample:
		case <-m.closed:
			return
		default:
		}
	}
}

func (m *Meter) emit(sample Sample) {
	m.listenersLock.Lock()
	listeners := make([]SampleListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.listenersLock.Unlock()

	for _, listener := range listeners {
		listener.Sample(sample)
	}
}
