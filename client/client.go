// Package client implements a TCP client for the command protocol of the
// Shure SLX-D receiver family. A Client owns one connection and exchanges
// strictly sequential command/response pairs; typed accessor methods cover
// the documented device and channel properties.
package client

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/wavetools/slxd/protocol"
)

// DefaultPort of the SLX-D command interface.
const DefaultPort = protocol.DefaultPort

// DefaultTimeout is the command timeout used when none is configured.
var DefaultTimeout = 2 * time.Second

// maxResponseBytes is the upper bound for a single response line. Longer
// lines are rejected as malformed before parsing.
const maxResponseBytes = 1024

// Client is an SLX-D control connection. The zero value is a disconnected
// client ready for Connect. A Client serializes nothing itself: exactly one
// command may be outstanding at a time, callers must not invoke methods of
// the same Client concurrently.
type Client struct {
	// Timeout bounds each command/response exchange, DefaultTimeout when
	// zero.
	Timeout time.Duration

	conn   net.Conn
	reader *bufio.Reader
}

// Open connects to the receiver at the given host and port and returns a
// ready client. Port 0 selects the default port.
func Open(host string, port int) (*Client, error) {
	client := &Client{}
	if err := client.Connect(host, port); err != nil {
		return nil, err
	}
	return client, nil
}

// Connect opens the TCP connection to the receiver. It fails with a
// *ConnectionError carrying the target address when the receiver is
// refused, unreachable, or does not accept in time. Connecting an already
// connected client is a no-op.
func (c *Client) Connect(host string, port int) error {
	if c.Connected() {
		return nil
	}
	if port == 0 {
		port = DefaultPort
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, c.timeout())
	if err != nil {
		return &ConnectionError{Addr: addr, Err: err}
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Connected indicates whether the client currently holds a connection.
func (c *Client) Connected() bool {
	return c.conn != nil
}

// Disconnect releases the connection. It is idempotent and never fails,
// including when the client was never connected, so cleanup code can call
// it unconditionally.
func (c *Client) Disconnect() {
	if c.conn == nil {
		return
	}
	c.conn.Close()
	c.conn = nil
	c.reader = nil
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// SendCommand writes one command line and waits for one response line.
// On expiry it fails with ErrTimeout and leaves the connection open; the
// receiver's reply to the timed-out command may still arrive later, so
// callers that keep the connection should expect it on the next exchange.
func (c *Client) SendCommand(command string) (protocol.Response, error) {
	if !c.Connected() {
		return protocol.Response{}, ErrNotConnected
	}

	deadline := time.Now().Add(c.timeout())
	if err := c.conn.SetDeadline(deadline); err != nil {
		return protocol.Response{}, fmt.Errorf("cannot set deadline: %w", err)
	}

	if _, err := fmt.Fprintf(c.conn, "%s\r\n", command); err != nil {
		return protocol.Response{}, fmt.Errorf("cannot send command %q: %w", command, wrapTimeout(err))
	}

	line, err := c.readLine()
	if err != nil {
		return protocol.Response{}, fmt.Errorf("no response to %q: %w", command, err)
	}
	return protocol.Parse(line)
}

// readResponse reads and parses one more line within the deadline of the
// current exchange.
func (c *Client) readResponse() (protocol.Response, error) {
	line, err := c.readLine()
	if err != nil {
		return protocol.Response{}, err
	}
	return protocol.Parse(line)
}

// readLine reads one CRLF-terminated line, enforcing maxResponseBytes.
func (c *Client) readLine() (string, error) {
	var line []byte
	for {
		fragment, err := c.reader.ReadSlice('\n')
		line = append(line, fragment...)
		if len(line) > maxResponseBytes {
			return "", fmt.Errorf("%w: line exceeds %d bytes", protocol.ErrMalformedResponse, maxResponseBytes)
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil {
			return "", wrapTimeout(err)
		}
		return string(line), nil
	}
}

func wrapTimeout(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return err
}

// Sample is one unsolicited metering line of a channel.
type Sample struct {
	Channel         int
	PeakRaw         int
	RMSRaw          int
	RSSIAntenna1Raw int
	RSSIAntenna2Raw int
	// Antenna is the currently dominant antenna (1 or 2).
	Antenna int
}

// PeakDBFS returns the peak audio level in dBFS.
func (s Sample) PeakDBFS() int { return protocol.LevelToDBFS(s.PeakRaw) }

// RMSDBFS returns the RMS audio level in dBFS.
func (s Sample) RMSDBFS() int { return protocol.LevelToDBFS(s.RMSRaw) }

// RSSIAntenna1DBm returns antenna 1's signal strength in dBm.
func (s Sample) RSSIAntenna1DBm() int { return protocol.RSSIToDBm(s.RSSIAntenna1Raw) }

// RSSIAntenna2DBm returns antenna 2's signal strength in dBm.
func (s Sample) RSSIAntenna2DBm() int { return protocol.RSSIToDBm(s.RSSIAntenna2Raw) }

// NextSample reads the next incoming line and decodes it as a SAMPLE
// metering line. Use it on a connection with active metering, where SAMPLE
// lines are the only incoming traffic.
func (c *Client) NextSample() (Sample, error) {
	if !c.Connected() {
		return Sample{}, ErrNotConnected
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout())); err != nil {
		return Sample{}, fmt.Errorf("cannot set deadline: %w", err)
	}
	line, err := c.readLine()
	if err != nil {
		return Sample{}, err
	}

	response, err := protocol.Parse(line)
	if err != nil {
		return Sample{}, err
	}
	if response.Kind != protocol.Sample || len(response.Values) != 5 {
		return Sample{}, fmt.Errorf("%w: expected a SAMPLE line, got %q", protocol.ErrMalformedResponse, line)
	}

	return Sample{
		Channel:         response.Channel,
		PeakRaw:         response.Values[0],
		RMSRaw:          response.Values[1],
		RSSIAntenna1Raw: response.Values[2],
		RSSIAntenna2Raw: response.Values[3],
		Antenna:         response.Values[4],
	}, nil
}
