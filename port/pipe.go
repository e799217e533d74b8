package port

import (
	"io"
	"sync"
	"time"
)

// Pipe returns two connected in-memory ports. Writes never block, the
// way a serial transmitter does not care whether anyone listens, and
// reads honor the Port timeout contract. It stands in for a real
// device pair in tests.
func Pipe() (Port, Port) {
	a := newPipeBuf()
	b := newPipeBuf()
	return &pipePort{r: a, w: b}, &pipePort{r: b, w: a}
}

type pipeBuf struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	closed bool
}

func newPipeBuf() *pipeBuf {
	self := &pipeBuf{}
	self.cond = sync.NewCond(&self.mu)
	return self
}

func (self *pipeBuf) write(p []byte) (int, error) {
	self.mu.Lock()
	defer self.mu.Unlock()

	if self.closed {
		return 0, io.ErrClosedPipe
	}
	self.buf = append(self.buf, p...)
	self.cond.Broadcast()
	return len(p), nil
}

func (self *pipeBuf) read(p []byte, timeout time.Duration) (int, error) {
	deadline := time.Now().Add(timeout)
	timer := time.AfterFunc(timeout, func() {
		self.mu.Lock()
		self.cond.Broadcast()
		self.mu.Unlock()
	})
	defer timer.Stop()

	self.mu.Lock()
	defer self.mu.Unlock()

	for len(self.buf) == 0 {
		if self.closed {
			return 0, io.EOF
		}
		if !time.Now().Before(deadline) {
			return 0, nil
		}
		self.cond.Wait()
	}

	n := copy(p, self.buf)
	self.buf = self.buf[n:]
	return n, nil
}

func (self *pipeBuf) close() {
	self.mu.Lock()
	self.closed = true
	self.cond.Broadcast()
	self.mu.Unlock()
}

type pipePort struct {
	r *pipeBuf
	w *pipeBuf
}

func (self *pipePort) Write(p []byte) (int, error) {
	return self.w.write(p)
}

func (self *pipePort) Read(p []byte, timeout time.Duration) (int, error) {
	return self.r.read(p, timeout)
}

func (self *pipePort) Close() error {
	self.r.close()
	self.w.close()
	return nil
}
