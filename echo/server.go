// Copyright (c) 2020-present devguard GmbH

// Package echo implements the two roles of the link test: a server
// that reflects whatever it receives, and a client that sends numbered
// payloads and verifies the reflections.
package echo

import (
	"time"

	"github.com/nbuchwitz/test-serial/port"
	"github.com/sirupsen/logrus"
)

// Serve reads whatever arrives on p and writes it back unchanged,
// until stop closes or the transport fails. The server makes no
// framing or buffering promises beyond what the transport provides.
func Serve(p port.Port, stop <-chan struct{}) error {
	buf := make([]byte, 4096)
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		n, err := p.Read(buf, time.Second)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}

		if _, err := p.Write(buf[:n]); err != nil {
			return err
		}
		logrus.Debugf("echoed %d bytes", n)
	}
}
