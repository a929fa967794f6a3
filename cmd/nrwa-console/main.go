// Command nrwa-console is a thin interactive ground-station stand-in
// for manually exercising a running nrwa-emud over its wire protocol.
// It is not the excluded terminal UI (§1 Non-goals) — it has no
// scenario engine and no scripting, just single-keystroke commands and
// a scrolling telemetry printout.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"time"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	"github.com/nrwa/nrwa-t6-emu/internal/busxport"
	"github.com/nrwa/nrwa-t6-emu/internal/fixedpoint"
	"github.com/nrwa/nrwa-t6-emu/internal/regmap"
	"github.com/nrwa/nrwa-t6-emu/internal/slip"
	"github.com/nrwa/nrwa-t6-emu/internal/wheel"
	"github.com/nrwa/nrwa-t6-emu/internal/wireproto"
)

// speedPresets are the setpoints the 's' key cycles through. There is
// no line-input widget in this single-keystroke console (§1 Non-goals:
// no scripting), so SET SPEED picks from a fixed menu instead of
// prompting for an arbitrary value.
var speedPresets = []float64{1000, 3000, 6000}

func main() {
	device := flag.String("device", "", "serial device path; empty dials the TCP virtual bus")
	addr := flag.String("connect", "127.0.0.1:4660", "TCP address of the virtual bus (used when -device is empty)")
	baud := flag.Int("baud", busxport.DefaultBaud, "serial baud rate")
	target := flag.Uint("addr", 0, "device address to talk to (0-7, or 0xFF for broadcast)")
	flag.Parse()

	var conn io.ReadWriteCloser
	var err error
	if *device != "" {
		conn, err = busxport.OpenSerial(*device, *baud)
	} else {
		conn, err = busxport.DialTCP(*addr)
	}
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer conn.Close()

	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		fmt.Printf("nrwa-console connected (%dx%d terminal)\n", w, h)
	} else {
		fmt.Println("nrwa-console connected")
	}
	printHelp()

	// Raw mode turns off line buffering and local echo so a keypress
	// reaches handleKey immediately instead of waiting for Enter.
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("enter raw mode: %v", err)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	if err := keyboard.Open(); err != nil {
		log.Fatalf("open keyboard: %v", err)
	}
	defer keyboard.Close()

	console := &console{conn: conn, addr: byte(*target), decoder: slip.NewDecoder()}

	for {
		ch, key, err := keyboard.GetSingleKey()
		if err != nil {
			log.Fatalf("read key: %v", err)
		}
		if key == keyboard.KeyCtrlC || ch == 'q' {
			fmt.Println("exiting")
			return
		}
		console.handleKey(ch)
	}
}

type console struct {
	conn    io.ReadWriteCloser
	addr    byte
	decoder *slip.Decoder

	presetIdx int
}

func (c *console) handleKey(ch rune) {
	switch ch {
	case 't':
		c.roundTrip(wireproto.ApplicationTelemetry, []byte{0x00})
	case 'p':
		c.roundTrip(wireproto.Peek, []byte{regmap.AddrFaultStatus})
	case 'i':
		c.roundTrip(wireproto.Ping, nil)
	case 'f':
		payload := make([]byte, 4)
		binary.LittleEndian.PutUint32(payload, 0xFFFFFFFF)
		c.roundTrip(wireproto.ClearFault, payload)
	case 'l':
		c.roundTrip(wireproto.TripLCL, nil)
	case 's':
		c.setSpeed()
	default:
		printHelp()
	}
}

// setSpeed sends an APPLICATION-COMMAND switching to SPEED mode with
// the next preset setpoint (§4.4: mode_byte + UQ14.18 RPM setpoint).
func (c *console) setSpeed() {
	rpm := speedPresets[c.presetIdx]
	c.presetIdx = (c.presetIdx + 1) % len(speedPresets)

	payload := make([]byte, 5)
	payload[0] = wheel.ModeSpeed.WireByte()
	binary.LittleEndian.PutUint32(payload[1:5], fixedpoint.ToUQ32(rpm, fixedpoint.FracUQ14_18))
	fmt.Printf("SET SPEED -> %.0f RPM\n", rpm)
	c.roundTrip(wireproto.ApplicationCommand, payload)
}

// roundTrip sends one framed request and waits briefly for a reply,
// printing whatever arrives (or noting a timeout — PEEK/TRIP-LCL have
// no protocol-level timeout per §5, but a manual console still needs
// one so a keypress never hangs the terminal).
func (c *console) roundTrip(cmd byte, payload []byte) {
	body := wireproto.Build(c.addr, cmd, payload)
	if _, err := c.conn.Write(slip.Encode(body)); err != nil {
		fmt.Printf("write error: %v\n", err)
		return
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	if dc, ok := c.conn.(interface{ SetReadDeadline(time.Time) error }); ok {
		dc.SetReadDeadline(deadline)
	}
	replies := 0
	buf := make([]byte, 256)
	for time.Now().Before(deadline) {
		n, err := c.conn.Read(buf)
		for _, frame := range c.decoder.DecodeBytes(buf[:n]) {
			replies++
			pkt, reason := wireproto.Parse(frame, c.addr)
			if reason != 0 {
				fmt.Printf("malformed reply (reason=%d)\n", reason)
				continue
			}
			fmt.Printf("reply: command=0x%02X payload=% X\n", pkt.Command, pkt.Payload)
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				break
			}
			if err != io.EOF {
				fmt.Printf("read error: %v\n", err)
			}
			return
		}
	}
	if replies == 0 {
		fmt.Println("no reply (timed out)")
	}
}

func printHelp() {
	fmt.Println("keys: i=ping  t=telemetry(standard)  p=peek(fault_status)  s=set-speed(cycle presets)  f=clear-fault(all)  l=trip-lcl  q=quit")
}
