// Command nrwa-emud is the NRWA-T6 firmware emulator device process:
// it boots the physics core and the I/O core as independent workers
// (§5) and serves the wire protocol over either a real serial link or
// a TCP-hosted virtual bus.
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nrwa/nrwa-t6-emu/internal/busxport"
	"github.com/nrwa/nrwa-t6-emu/internal/regmap"
	"github.com/nrwa/nrwa-t6-emu/internal/wheel"
	"github.com/nrwa/nrwa-t6-emu/internal/wireproto"
)

const (
	fwMajor = 1
	fwMinor = 0
	fwPatch = 0
	serial  = 7 // stand-in serial number; the real ICD reads this from an EEPROM this emulator does not model
)

func main() {
	verbose := flag.Bool("v", false, "enable verbose logging")
	address := flag.Uint("addr", 0, "device address, sampled from ADDR[2:0] on real hardware (0-7)")
	device := flag.String("device", "", "serial device path (e.g. /dev/ttyUSB0); empty selects the TCP virtual bus")
	baud := flag.Int("baud", busxport.DefaultBaud, "serial baud rate")
	listen := flag.String("listen", ":4660", "TCP listen address for the virtual bus (used when -device is empty)")
	flag.Parse()

	if *address > 7 {
		log.Fatalf("device address %d out of range (ADDR[2:0] is 3 bits, 0-7)", *address)
	}

	printIfVerbose(*verbose, "Booting physics core...")
	kernel := wheel.NewKernel()
	mailbox := &busxport.Mailbox[wheel.Command]{}
	telemetry := &busxport.SnapshotSlot[wheel.Snapshot]{}
	loop := busxport.NewPhysicsLoop(kernel, mailbox, telemetry)

	done := make(chan struct{})
	go func() {
		loop.Run()
		close(done)
	}()

	info := regmap.DeviceInfo{DeviceType: 0x06, Serial: serial, FWMajor: fwMajor, FWMinor: fwMinor, FWPatch: fwPatch}
	addr := byte(*address)

	var closer io.Closer
	if *device != "" {
		printIfVerbose(*verbose, "Opening serial device %s at %d baud...", *device, *baud)
		conn, err := busxport.OpenSerial(*device, *baud)
		if err != nil {
			log.Fatalf("open serial: %v", err)
		}
		closer = conn
		go serveConnection(conn, addr, info, mailbox, telemetry, *verbose)
	} else {
		printIfVerbose(*verbose, "Starting TCP virtual bus on %s...", *listen)
		ln, err := busxport.ListenTCP(*listen, func(conn io.ReadWriteCloser) {
			serveConnection(conn, addr, info, mailbox, telemetry, *verbose)
		})
		if err != nil {
			log.Fatalf("listen: %v", err)
		}
		closer = ln
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	<-sigCh
	printIfVerbose(*verbose, "Signal received, shutting down...")
	loop.Stop()
	closer.Close()
	<-done
}

// serveConnection runs the I/O worker's event loop for one bus
// connection: poll the transport, feed bytes through the framing
// codec and dispatcher, write replies back (§5 I/O worker).
func serveConnection(conn io.ReadWriteCloser, addr byte, info regmap.DeviceInfo, mailbox *busxport.Mailbox[wheel.Command], telemetry *busxport.SnapshotSlot[wheel.Snapshot], verbose bool) {
	defer conn.Close()
	dispatcher := wireproto.NewDispatcher(addr, info, mailbox, telemetry)

	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			for _, reply := range dispatcher.HandleBytes(buf[:n]) {
				if _, werr := conn.Write(reply); werr != nil {
					printIfVerbose(verbose, "write error: %v", werr)
					return
				}
			}
		}
		if err != nil {
			if err != io.EOF {
				printIfVerbose(verbose, "read error: %v", err)
			}
			return
		}
	}
}

func printIfVerbose(verbose bool, format string, v ...interface{}) {
	if verbose {
		log.Printf(format, v...)
	}
}
