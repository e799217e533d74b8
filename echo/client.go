// Copyright (c) 2020-present devguard GmbH

package echo

import (
	"bytes"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/nbuchwitz/test-serial/port"
	"github.com/sirupsen/logrus"
)

const (
	DefaultRuns            = 10
	DefaultResponseTimeout = 3 * time.Second
)

// TimeoutError means the peer sent nothing back within the response
// timeout. Most likely there is no server on the other end, or the
// wiring is broken in the RX direction.
type TimeoutError struct {
	Run     int
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("run %d: no response within %v", e.Run, e.Timeout)
}

// MismatchError means bytes came back, but not the ones we sent.
type MismatchError struct {
	Response []byte
	Expected []byte
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("response does not match expected response: %q != %q", e.Response, e.Expected)
}

type Client struct {
	Port            port.Port
	Runs            int
	ResponseTimeout time.Duration
}

// Run sends one payload per round and verifies each echo before moving
// on. The first failing round aborts the test.
func (self *Client) Run() error {
	runs := self.Runs
	if runs <= 0 {
		runs = DefaultRuns
	}
	timeout := self.ResponseTimeout
	if timeout <= 0 {
		timeout = DefaultResponseTimeout
	}

	// the session id keeps log captures from two bench setups apart
	log := logrus.WithField("session", uuid.New().String()[:8])

	total := 0
	start := time.Now()

	for run := 0; run < runs; run++ {
		payload := []byte(fmt.Sprintf("TX_run_%d\n", run))

		if _, err := self.Port.Write(payload); err != nil {
			return err
		}

		response, err := readLine(self.Port, len(payload), timeout)
		if err != nil {
			return err
		}
		if len(response) == 0 {
			return &TimeoutError{Run: run, Timeout: timeout}
		}
		if !bytes.Equal(response, payload) {
			return &MismatchError{Response: response, Expected: payload}
		}

		total += len(response)
		log.Debugf("run %d ok", run)
	}

	log.Infof("echoed %s in %v", humanize.Bytes(uint64(total)), time.Since(start).Round(time.Millisecond))
	return nil
}

// readLine collects bytes until a newline, max bytes, or the deadline.
// Running out of time is not an error, the caller sees whatever
// arrived, possibly nothing.
func readLine(p port.Port, max int, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	line := make([]byte, 0, max)
	buf := make([]byte, max)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return line, nil
		}

		n, err := p.Read(buf, remaining)
		if err != nil {
			return nil, err
		}
		line = append(line, buf[:n]...)

		if len(line) >= max || bytes.IndexByte(line, '\n') >= 0 {
			return line, nil
		}
	}
}
