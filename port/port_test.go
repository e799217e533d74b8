package port

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func TestPipeRoundtrip(t *testing.T) {

	go func() {
		time.Sleep(10 * time.Second)
		panic("should be done by now")
	}()

	a, b := Pipe()
	defer a.Close()
	defer b.Close()

	payload := []byte{0x00, 0x42, 0xff, '\n'}
	if _, err := a.Write(payload); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 16)
	n, err := b.Read(buf, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf[:n], payload) {
		t.Errorf("got %q, want %q", buf[:n], payload)
	}
}

func TestPipeReadTimeout(t *testing.T) {

	go func() {
		time.Sleep(10 * time.Second)
		panic("should have timed out")
	}()

	a, _ := Pipe()
	defer a.Close()

	start := time.Now()
	n, err := a.Read(make([]byte, 1), 150*time.Millisecond)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("read %d bytes from an idle pipe", n)
	}
	if elapsed < 100*time.Millisecond || elapsed > time.Second {
		t.Errorf("timed out after %v, want about 150ms", elapsed)
	}
}

func TestPipeClosedPeer(t *testing.T) {

	a, b := Pipe()
	b.Close()

	_, err := a.Read(make([]byte, 1), time.Second)
	if err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}
	if _, err := b.Write([]byte("x")); err == nil {
		t.Error("write to a closed pipe should fail")
	}
}

func TestDeviceConfig(t *testing.T) {

	sc := deviceConfig(Config{Device: "/dev/ttyUSB0", Baud: 9600})
	if sc.Address != "/dev/ttyUSB0" {
		t.Errorf("address %q", sc.Address)
	}
	if sc.BaudRate != 9600 {
		t.Errorf("baudrate %d", sc.BaudRate)
	}
	if sc.RS485.Enabled {
		t.Error("rs485 must stay off unless asked for")
	}

	sc = deviceConfig(Config{Device: "/dev/ttyUSB0", Baud: 115200, RS485: true})
	if !sc.RS485.Enabled {
		t.Error("rs485 not enabled")
	}
	if !sc.RS485.RtsHighDuringSend {
		t.Error("rs485 direction control not set up")
	}
}

func TestOpenMissingDevice(t *testing.T) {

	start := time.Now()
	_, err := Open(Config{Device: "/dev/nonexistent-test-serial", Baud: 115200})
	if err == nil {
		t.Fatal("expected an error")
	}
	if time.Since(start) > time.Second {
		t.Error("open of a missing device should fail fast")
	}
}
