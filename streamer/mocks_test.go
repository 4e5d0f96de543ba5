package streamer

import (
	"sync"
	"time"

	"github.com/opd-ai/h264push/av/h264"
)

// MockClock is a Clock whose time only moves when After is called or the
// test advances it.
type MockClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *MockClock) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	m.waits = append(m.waits, d)
	ch := make(chan time.Time, 1)
	ch <- m.now
	return ch
}

func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func (m *MockClock) Waits() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.waits...)
}

// blockingClock never fires.
type blockingClock struct{ now time.Time }

func (b blockingClock) Now() time.Time                      { return b.now }
func (b blockingClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

// MockSender records NAL units and fails selected calls.
type MockSender struct {
	mu     sync.Mutex
	nalus  []h264.NALU
	calls  int
	failOn map[int]error
}

func NewMockSender() *MockSender {
	return &MockSender{failOn: make(map[int]error)}
}

// FailOn makes the n-th SendNALU call (0-based) return err.
func (m *MockSender) FailOn(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[n] = err
}

func (m *MockSender) SendNALU(nalu h264.NALU) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := m.calls
	m.calls++
	if err, ok := m.failOn[call]; ok {
		return err
	}
	m.nalus = append(m.nalus, nalu)
	return nil
}

func (m *MockSender) NALUs() []h264.NALU {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]h264.NALU(nil), m.nalus...)
}

var (
	testSPS   = []byte{0x67, 0x42, 0x00, 0x1F, 0xE9, 0x02, 0xC0, 0x44}
	testPPS   = []byte{0x68, 0xCE, 0x3C, 0x80}
	testIDR   = []byte{0x65, 0x88, 0x84, 0x21, 0xA0}
	testSlice = []byte{0x41, 0x9A, 0x02, 0x33}
)

// annexB joins units with 4-byte start codes.
func annexB(units ...[]byte) []byte {
	var out []byte
	for _, u := range units {
		out = append(out, 0x00, 0x00, 0x00, 0x01)
		out = append(out, u...)
	}
	return out
}

// testStream holds three pictures: SPS+PPS+IDR, then two P slices.
func testStream() []byte {
	return annexB(testSPS, testPPS, testIDR, testSlice, testSlice)
}
