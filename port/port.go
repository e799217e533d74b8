// Copyright (c) 2020-present devguard GmbH

// Package port is the serial transport shared by both roles. It hides
// the operating system device behind a small interface so that tests
// can substitute a loopback double for real hardware.
package port

import (
	"fmt"
	"time"

	"github.com/goburrow/serial"
)

// pollInterval is the granularity of the timeout bounded read loop.
// The device timeout is fixed at open, so longer timeouts are built
// from repeated polls against an absolute deadline.
const pollInterval = 100 * time.Millisecond

type Config struct {
	Device string
	Baud   int
	RS485  bool
}

// Port is the capability set both roles need: synchronous write,
// timeout bounded read, close.
type Port interface {
	Write(p []byte) (int, error)

	// Read blocks until at least one byte arrived or timeout elapsed.
	// A timeout is not an error, it returns 0, nil.
	Read(p []byte, timeout time.Duration) (int, error)

	Close() error
}

type devicePort struct {
	inner serial.Port
}

// Open opens the device and drains anything still sitting in the RX
// buffer from before we had it.
func Open(cfg Config) (Port, error) {
	inner, err := serial.Open(deviceConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}

	self := &devicePort{inner: inner}
	self.drain()
	return self, nil
}

func deviceConfig(cfg Config) *serial.Config {
	sc := &serial.Config{
		Address:  cfg.Device,
		BaudRate: cfg.Baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  pollInterval,
	}
	if cfg.RS485 {
		sc.RS485 = serial.RS485Config{
			Enabled:           true,
			RtsHighDuringSend: true,
		}
	}
	return sc
}

func (self *devicePort) drain() {
	buf := make([]byte, 256)
	for {
		n, err := self.inner.Read(buf)
		if n == 0 || err != nil {
			return
		}
	}
}

func (self *devicePort) Write(p []byte) (int, error) {
	return self.inner.Write(p)
}

func (self *devicePort) Read(p []byte, timeout time.Duration) (int, error) {
	deadline := time.Now().Add(timeout)
	for {
		n, err := self.inner.Read(p)
		if err == serial.ErrTimeout {
			if !time.Now().Before(deadline) {
				return 0, nil
			}
			continue
		}
		return n, err
	}
}

func (self *devicePort) Close() error {
	return self.inner.Close()
}
