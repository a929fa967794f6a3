package busxport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/tarm/serial"
)

// DefaultBaud is the ICD's default line rate (§6: "Default baud
// 460800, 8-N-1").
const DefaultBaud = 460800

// OpenSerial opens a real RS-422/RS-485 link at 8-N-1 with the given
// baud rate. A zero baud selects DefaultBaud.
func OpenSerial(device string, baud int) (io.ReadWriteCloser, error) {
	if device == "" {
		return nil, errors.New("busxport: serial device path is empty")
	}
	if baud == 0 {
		baud = DefaultBaud
	}
	cfg := &serial.Config{
		Name:        device,
		Baud:        baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: 50 * time.Millisecond,
	}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, fmt.Errorf("busxport: open serial %s: %w", device, err)
	}
	return port, nil
}

// ListenTCP starts a TCP listener standing in for the physical bus
// when no hardware is attached (virtual/HIL-over-network testing, §6
// Non-goals: no real electrical bus). It accepts exactly one
// connection at a time, matching the ICD's point-to-point half-duplex
// link, and hands each accepted connection to handle.
func ListenTCP(addr string, handle func(io.ReadWriteCloser)) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("busxport: listen %s: %w", addr, err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			handle(conn)
		}
	}()
	return ln, nil
}

// DialTCP connects to a TCP-hosted virtual bus, for nrwa-console and
// other ground-station stand-ins exercising the same framing the real
// serial link carries.
func DialTCP(addr string) (io.ReadWriteCloser, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("busxport: dial %s: %w", addr, err)
	}
	return conn, nil
}
