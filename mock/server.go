package mock

import (
	"bufio"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wavetools/slxd/protocol"
)

var meterRateExp = regexp.MustCompile(`^<\s*SET\s+(\d+)\s+METER_RATE\s+(\d+)\s*>$`)

// Server is a TCP server that emulates an SLX-D receiver. It accepts any
// number of concurrent client connections and exposes harness operations
// that mutate the emulated device state directly.
//
// Configure Addr and Logger before Start; afterwards the server is driven
// through its methods only.
type Server struct {
	// Addr is the listen address, "127.0.0.1:0" when empty.
	Addr string
	// Logger receives connection and command events, disabled when unset.
	Logger zerolog.Logger

	device     *Device
	dispatcher *Dispatcher
	listener   net.Listener
	wg         sync.WaitGroup

	mu            sync.Mutex
	conns         map[*serverConn]struct{}
	meters        map[int]*meterTask
	responseDelay time.Duration
	onConnection  func(remote net.Addr)
	onCommand     func(command, response string)
	closed        bool
}

// serverConn wraps one accepted connection. writes from the handler loop
// and from metering tasks are serialized through mu so lines never
// interleave.
type serverConn struct {
	conn net.Conn
	mu   sync.Mutex
}

// writeTimeout bounds a single line write. Without it a client that stops
// draining its socket leaves a metering task blocked in the write, and with
// it every path that waits for that task to finish (Stop, a takeover by
// another connection).
var writeTimeout = 10 * time.Second

func (c *serverConn) writeLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(c.conn, "%s\r\n", line)
	return err
}

type meterTask struct {
	owner *serverConn
	stop  chan struct{}
	done  chan struct{}
}

// NewServer returns a Server emulating the given device.
func NewServer(device *Device) *Server {
	return &Server{
		Logger:     zerolog.Nop(),
		device:     device,
		dispatcher: NewDispatcher(device),
		conns:      make(map[*serverConn]struct{}),
		meters:     make(map[int]*meterTask),
	}
}

// Device returns the emulated device state.
func (s *Server) Device() *Device {
	return s.device
}

// Start binds the listening socket and begins accepting connections.
func (s *Server) Start() error {
	addr := s.Addr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("cannot listen on %s: %w", addr, err)
	}
	s.listener = listener
	s.Logger.Info().Stringer("addr", listener.Addr()).Msg("mock receiver listening")

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// ListenAddr returns the bound listen address, nil before Start.
func (s *Server) ListenAddr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop cancels all metering tasks, closes every client connection, and
// releases the listening socket. It blocks until all handlers finished.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true

	var tasks []*meterTask
	for channel, task := range s.meters {
		tasks = append(tasks, task)
		delete(s.meters, channel)
	}
	conns := make([]*serverConn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, task := range tasks {
		close(task.stop)
		<-task.done
	}
	for _, conn := range conns {
		conn.conn.Close()
	}
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	s.Logger.Info().Msg("mock receiver stopped")
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		sc := &serverConn{conn: conn}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[sc] = struct{}{}
		onConnection := s.onConnection
		s.mu.Unlock()

		s.Logger.Debug().Stringer("remote", conn.RemoteAddr()).Msg("client connected")
		if onConnection != nil {
			onConnection(conn.RemoteAddr())
		}

		s.wg.Add(1)
		go s.handleConn(sc)
	}
}

func (s *Server) handleConn(sc *serverConn) {
	defer s.wg.Done()
	defer s.dropConn(sc)

	scanner := bufio.NewScanner(sc.conn)
	for scanner.Scan() {
		command := strings.TrimSpace(scanner.Text())
		if command == "" {
			continue
		}

		s.mu.Lock()
		delay := s.responseDelay
		onCommand := s.onCommand
		s.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}

		response, ok := s.dispatcher.Handle(command)
		s.Logger.Debug().Str("command", command).Str("response", response).Msg("dispatch")

		if onCommand != nil {
			onCommand(command, response)
		}
		if !ok {
			continue
		}
		if err := sc.writeLine(response); err != nil {
			return
		}

		s.checkMeterCommand(command, sc)
	}
}

func (s *Server) dropConn(sc *serverConn) {
	s.mu.Lock()
	delete(s.conns, sc)
	var tasks []*meterTask
	for channel, task := range s.meters {
		if task.owner == sc {
			tasks = append(tasks, task)
			delete(s.meters, channel)
		}
	}
	s.mu.Unlock()

	for _, task := range tasks {
		close(task.stop)
		<-task.done
	}
	sc.conn.Close()
	s.Logger.Debug().Stringer("remote", sc.conn.RemoteAddr()).Msg("client disconnected")
}

// checkMeterCommand starts, replaces, or cancels the metering task of a
// channel when the command was a SET METER_RATE. The task is keyed by
// channel number alone: a later request from any connection takes the
// stream over (last-writer-wins).
func (s *Server) checkMeterCommand(command string, sc *serverConn) {
	m := meterRateExp.FindStringSubmatch(command)
	if m == nil {
		return
	}
	channel, _ := strconv.Atoi(m[1])
	rateMs, _ := strconv.Atoi(m[2])

	s.mu.Lock()
	previous := s.meters[channel]
	delete(s.meters, channel)

	var task *meterTask
	if rateMs > 0 && !s.closed {
		task = &meterTask{
			owner: sc,
			stop:  make(chan struct{}),
			done:  make(chan struct{}),
		}
		s.meters[channel] = task
	}
	s.mu.Unlock()

	if previous != nil {
		close(previous.stop)
		<-previous.done
	}
	if task != nil {
		go s.runMeter(channel, time.Duration(rateMs)*time.Millisecond, task)
	}
}

func (s *Server) runMeter(channel int, interval time.Duration, task *meterTask) {
	defer close(task.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-task.stop:
			return
		case <-ticker.C:
			sample, ok := s.dispatcher.GenerateSample(channel)
			if !ok {
				return
			}
			if err := task.owner.writeLine(sample); err != nil {
				return
			}
		}
	}
}

// Broadcast writes a line to every currently connected client, ignoring
// failures on dead connections.
func (s *Server) Broadcast(line string) {
	s.mu.Lock()
	conns := make([]*serverConn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.writeLine(line)
	}
}

// SetResponseDelay delays every command response by the given duration,
// for exercising client timeouts.
func (s *Server) SetResponseDelay(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responseDelay = delay
}

// OnConnection registers a hook invoked for every accepted connection.
func (s *Server) OnConnection(f func(remote net.Addr)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onConnection = f
}

// OnCommand registers a hook invoked for every processed command line with
// the command and the response ("" when the receiver stayed silent).
func (s *Server) OnCommand(f func(command, response string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommand = f
}

// ConnectTransmitter simulates a transmitter linking to a channel and
// raises the RF signal on both antennas.
func (s *Server) ConnectTransmitter(channel int, model string, batteryBars, batteryMinutes int) {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	ch := s.device.channel(channel)
	if ch == nil {
		return
	}
	ch.Transmitter = &Transmitter{
		Model:          model,
		Connected:      true,
		BatteryBars:    batteryBars,
		BatteryMinutes: batteryMinutes,
	}
	ch.RSSIA1Raw = 80
	ch.RSSIA2Raw = 75
}

// DisconnectTransmitter simulates a transmitter unlinking from a channel;
// signal and audio drop to the no-signal floor.
func (s *Server) DisconnectTransmitter(channel int) {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	ch := s.device.channel(channel)
	if ch == nil {
		return
	}
	ch.Transmitter = nil
	ch.RSSIA1Raw = 0
	ch.RSSIA2Raw = 0
	ch.AudioPeakRaw = 0
	ch.AudioRMSRaw = 0
}

// SetBatteryLevel simulates a battery reading change on the channel's
// transmitter. Pass minutes < 0 to estimate the runtime from the bars.
func (s *Server) SetBatteryLevel(channel, bars, minutes int) {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	ch := s.device.channel(channel)
	if ch == nil || ch.Transmitter == nil {
		return
	}
	ch.Transmitter.BatteryBars = bars
	if minutes >= 0 {
		ch.Transmitter.BatteryMinutes = minutes
	} else {
		// roughly 96 minutes per bar
		ch.Transmitter.BatteryMinutes = bars * 96
	}
}

// SetAudioLevel simulates audio metering values on a channel, clamped to
// the raw range.
func (s *Server) SetAudioLevel(channel, peak, rms int) {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	ch := s.device.channel(channel)
	if ch == nil {
		return
	}
	ch.AudioPeakRaw = clampMeterRaw(peak)
	ch.AudioRMSRaw = clampMeterRaw(rms)
}

// SetRSSI simulates RF signal strength on a channel, clamped to the raw
// range.
func (s *Server) SetRSSI(channel, antenna1, antenna2 int) {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	ch := s.device.channel(channel)
	if ch == nil {
		return
	}
	ch.RSSIA1Raw = clampMeterRaw(antenna1)
	ch.RSSIA2Raw = clampMeterRaw(antenna2)
}

func clampMeterRaw(value int) int {
	if value < protocol.MeterRawMin {
		return protocol.MeterRawMin
	}
	if value > protocol.MeterRawMax {
		return protocol.MeterRawMax
	}
	return value
}
