// Package monitor runs the live blink-monitoring pipeline: a frame producer
// reading the camera at a fixed cadence feeds a bounded queue, and a consumer
// drives face-landmark extraction, the blink session state machine, overlay
// rendering, and snapshot publication.
package monitor

import (
	"errors"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/MDidoStar/blinkwell/internal/blink"
	"github.com/MDidoStar/blinkwell/internal/capture"
	"github.com/MDidoStar/blinkwell/internal/detector"
	"github.com/MDidoStar/blinkwell/internal/notify"
)

// Pipeline defaults. The frame interval approximates the 30 fps the camera is
// configured for; the queue bounds how far capture may run ahead of
// processing.
const (
	DefaultFrameInterval = 33 * time.Millisecond
	DefaultQueueDepth    = 4
)

// ErrAlreadyRunning is returned when Start is called on a running monitor.
var ErrAlreadyRunning = errors.New("monitor is already running")

// Config holds configuration options for the monitor.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector

	// Notifiers, when set, receives an event for every minute that closes
	// under the blink target.
	Notifiers *notify.Dispatcher

	// OnMinute, when set, is called with every completed minute summary.
	OnMinute func(blink.MinuteSummary)

	// FrameInterval overrides the capture cadence. Zero means
	// DefaultFrameInterval.
	FrameInterval time.Duration

	// Now overrides the pipeline clock. Nil means time.Now.
	Now func() time.Time

	// QueueDepth overrides the frame queue bound. Zero means
	// DefaultQueueDepth.
	QueueDepth int
}

// Monitor owns one blink-monitoring session at a time. The camera and the
// landmark detector are acquired on Start and released unconditionally when
// the pipeline loop exits, whether by stop request, session completion, or
// frame-acquisition failure.
type Monitor struct {
	config Config
	encode func(frame *gocv.Mat) ([]byte, error)

	mu       sync.Mutex
	session  *blink.Session
	stopCh   chan struct{}
	done     chan struct{}
	stopping bool
	lastErr  error
	lastJPG  []byte

	subsMu sync.RWMutex
	subs   map[chan blink.Snapshot]struct{}
}

// New creates a Monitor with the given configuration.
func New(config Config) *Monitor {
	if config.FrameInterval <= 0 {
		config.FrameInterval = DefaultFrameInterval
	}
	if config.QueueDepth <= 0 {
		config.QueueDepth = DefaultQueueDepth
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Monitor{
		config:  config,
		encode:  encodeFrame,
		session: blink.NewSession(),
		subs:    make(map[chan blink.Snapshot]struct{}),
	}
}

// Start opens the camera and begins a new session. All session state is
// re-initialized; nothing carries over from a previous run.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopCh != nil {
		return ErrAlreadyRunning
	}

	if err := m.config.Camera.Open(); err != nil {
		return err
	}

	m.session.Start(m.config.Now())
	m.lastErr = nil
	m.lastJPG = nil

	m.stopCh = make(chan struct{})
	m.done = make(chan struct{})
	m.stopping = false
	go m.run(m.stopCh, m.done)

	log.Println("blink monitor started")
	return nil
}

// Stop requests the pipeline to stop and waits for the camera to be
// released. Stopping an idle monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.stopCh == nil {
		m.mu.Unlock()
		return
	}
	// stopCh stays non-nil until the loop's cleanup has released the
	// devices; the loop clears it itself. Start keeps rejecting callers
	// until then.
	if !m.stopping {
		m.stopping = true
		close(m.stopCh)
	}
	done := m.done
	m.mu.Unlock()

	<-done
	log.Println("blink monitor stopped")
}

// Status returns the current session snapshot.
func (m *Monitor) Status() blink.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Snapshot(m.config.Now())
}

// LastError returns the frame-acquisition error that ended the last session,
// if any.
func (m *Monitor) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// LatestFrame returns the most recent overlaid JPEG frame, or nil when no
// frame has been processed yet.
func (m *Monitor) LatestFrame() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastJPG == nil {
		return nil
	}
	out := make([]byte, len(m.lastJPG))
	copy(out, m.lastJPG)
	return out
}

// Subscribe registers for session snapshots. The returned cancel function
// must be called to release the subscription. Slow subscribers miss
// intermediate snapshots rather than blocking the pipeline.
func (m *Monitor) Subscribe() (<-chan blink.Snapshot, func()) {
	ch := make(chan blink.Snapshot, 8)

	m.subsMu.Lock()
	m.subs[ch] = struct{}{}
	m.subsMu.Unlock()

	cancel := func() {
		m.subsMu.Lock()
		if _, ok := m.subs[ch]; ok {
			delete(m.subs, ch)
			close(ch)
		}
		m.subsMu.Unlock()
	}
	return ch, cancel
}

func (m *Monitor) publish(snap blink.Snapshot) {
	m.subsMu.RLock()
	defer m.subsMu.RUnlock()
	for ch := range m.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// run is the consumer side of the pipeline. It owns the session for the
// lifetime of the loop and is the only goroutine that mutates it while
// running. The camera and detector are released exactly once, in the defer,
// on every exit path.
func (m *Monitor) run(stop, done chan struct{}) {
	quit := make(chan struct{})
	frames := make(chan *gocv.Mat, m.config.QueueDepth)
	readErr := make(chan error, 1)

	go m.produce(frames, readErr, quit)

	defer func() {
		close(quit)
		// Drain frames the producer queued before it observed quit.
	drain:
		for {
			select {
			case frame := <-frames:
				frame.Close()
			default:
				break drain
			}
		}
		if err := m.config.Camera.Close(); err != nil {
			log.Printf("error closing camera: %v", err)
		}
		if m.config.Detector != nil {
			if err := m.config.Detector.Close(); err != nil {
				log.Printf("error closing detector: %v", err)
			}
		}
		// The monitor becomes startable again only after the devices are
		// released; until this point Start returns ErrAlreadyRunning even
		// when the loop exited on its own (completion, device failure).
		m.mu.Lock()
		if m.stopCh == stop {
			m.stopCh = nil
			m.stopping = false
		}
		m.mu.Unlock()
		close(done)
	}()

	for {
		select {
		case <-stop:
			m.mu.Lock()
			m.session.Stop()
			snap := m.session.Snapshot(m.config.Now())
			m.mu.Unlock()
			m.publish(snap)
			return

		case err := <-readErr:
			// Device failure: no retry, the loop aborts and the session is
			// marked inactive.
			log.Printf("frame acquisition failed: %v", err)
			m.mu.Lock()
			m.lastErr = err
			m.session.Stop()
			snap := m.session.Snapshot(m.config.Now())
			m.mu.Unlock()
			m.publish(snap)
			return

		case frame := <-frames:
			running := m.process(frame)
			frame.Close()
			if !running {
				log.Println("session completed")
				return
			}
		}
	}
}

// produce reads frames at the configured cadence, mirrors them, and pushes
// them into the bounded queue. A single read failure aborts the producer.
func (m *Monitor) produce(frames chan<- *gocv.Mat, readErr chan<- error, quit <-chan struct{}) {
	ticker := time.NewTicker(m.config.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			frame, err := m.config.Camera.ReadFrame()
			if err != nil {
				select {
				case readErr <- err:
				case <-quit:
				}
				return
			}
			capture.Mirror(frame)
			select {
			case frames <- frame:
			case <-quit:
				frame.Close()
				return
			}
		}
	}
}

// process runs one frame through landmark extraction and the session state
// machine, renders the overlay, and publishes the resulting snapshot. It
// returns false once the session is no longer running.
func (m *Monitor) process(frame *gocv.Mat) bool {
	now := m.config.Now()

	face, err := m.config.Detector.Detect(frame)
	if err != nil {
		// Extraction transport errors are logged and treated like a
		// no-face frame; counters and state stay untouched.
		log.Printf("error detecting face: %v", err)
		face = nil
	}

	m.mu.Lock()
	if face != nil {
		m.session.Observe(face.EyeOpenness(), now)
	}
	summary := m.session.Tick(now)
	snap := m.session.Snapshot(now)
	reminder := m.session.ReminderVisible(now)
	running := m.session.Running()
	m.mu.Unlock()

	if summary != nil {
		log.Printf("minute %d closed: %d blinks (target %d)", summary.Index, summary.Blinks, blink.NormalMax)
		if m.config.OnMinute != nil {
			m.config.OnMinute(*summary)
		}
		if summary.UnderTarget && m.config.Notifiers != nil {
			event := notify.Event{
				Minute:    summary.Index,
				Blinks:    summary.Blinks,
				Target:    blink.NormalMax,
				Timestamp: summary.ClosedAt.UTC().Format(time.RFC3339),
			}
			go m.config.Notifiers.Dispatch(event)
		}
	}

	drawOverlay(frame, snap, reminder, now)

	if encoded, err := m.encode(frame); err != nil {
		log.Printf("error encoding frame: %v", err)
	} else {
		m.mu.Lock()
		m.lastJPG = encoded
		m.mu.Unlock()
	}

	m.publish(snap)
	return running
}

// encodeFrame JPEG-encodes a frame into a freshly allocated buffer.
func encodeFrame(frame *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
