//go:build linux

package port

import (
	"bytes"
	"testing"
	"time"

	"github.com/creack/pty"
)

// A pseudo terminal pair exercises the real open path, termios setup
// included, without serial hardware on the test host.
func TestOpenPty(t *testing.T) {

	go func() {
		time.Sleep(10 * time.Second)
		panic("should be done by now")
	}()

	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	p, err := Open(Config{Device: tty.Name(), Baud: 115200})
	if err != nil {
		t.Fatalf("open %s: %v", tty.Name(), err)
	}
	defer p.Close()

	if _, err := ptmx.Write([]byte("ping\n")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 16)
	n, err := p.Read(buf, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf[:n], []byte("ping")) {
		t.Errorf("got %q, want ping", buf[:n])
	}

	if _, err := p.Write([]byte("pong\n")); err != nil {
		t.Fatal(err)
	}
	ptmx.SetReadDeadline(time.Now().Add(time.Second))
	n, err = ptmx.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf[:n], []byte("pong")) {
		t.Errorf("got %q, want pong", buf[:n])
	}
}
