//go:build rp2040

package main

import (
	"machine"
	"time"

	"lazyservo/core"
	"lazyservo/protocol"
)

var (
	// Buffers for communication
	inputBuffer *protocol.FifoBuffer
	link        *core.ServoLink

	// Debug counters
	framesSent uint32
	msgerrors  uint32

	// USB connection state tracking
	usbWasDisconnected       bool
	consecutiveWriteFailures uint32
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	// Initialize USB CDC immediately
	InitUSB()

	InitDebugUART()
	core.SetDebugWriter(DebugPrintln)
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	// Initialize clock
	InitClock()
	core.TimerInit()

	inputBuffer = protocol.NewFifoBuffer(256)
	link = core.NewServoLink(writeUSB)

	queue := core.NewTimerQueue()
	clock := core.SystemClock{}
	for _, spec := range servoTable {
		driver, err := newPulseDriver(spec)
		if err != nil {
			DebugPrintln("[MAIN] servo " + itoa(int(spec.oid)) + ": " + err.Error())
			continue
		}
		cfg := core.DefaultConfig()
		cfg.OID = spec.oid
		s := core.NewLazyServo(core.PulsePin(spec.pin), driver, core.NewTrigger(queue, clock), clock, cfg)
		link.Table().Add(s)
	}

	// Start USB reader goroutine
	go usbReaderLoop()

	rx := make([]byte, protocol.MessageLengthMax)
	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
					inputBuffer.Reset()
					core.DumpTransitionRing()
				}
			}()

			// Update system time from hardware
			UpdateSystemTime()

			// Process incoming messages
			for inputBuffer.Available() > 0 {
				n := inputBuffer.Read(rx)
				link.Receive(rx[:n])
			}

			// Process scheduled timers, then poll every servo
			core.ProcessTimers(queue)
			link.Table().UpdateAll()
		}()

		// Yield to other goroutines
		time.Sleep(10 * time.Microsecond)
	}
}

// usbReaderLoop runs in a goroutine to continuously read USB data
func usbReaderLoop() {
	// Recover from panics to prevent a firmware crash
	defer func() {
		if r := recover(); r != nil {
			msgerrors++
			// Restart the reader loop
			time.Sleep(100 * time.Millisecond)
			go usbReaderLoop()
		}
	}()

	for {
		for USBAvailable() > 0 {
			data, err := USBRead()
			if err != nil {
				msgerrors++
				time.Sleep(1 * time.Millisecond)
				break
			}

			// Fresh connection: drop partial frames from the old one
			if usbWasDisconnected {
				usbWasDisconnected = false
				inputBuffer.Reset()
				link.Decoder().Reset()
				consecutiveWriteFailures = 0
			}

			if inputBuffer.Write([]byte{data}) == 0 {
				// Buffer full - error condition
				msgerrors++
				time.Sleep(10 * time.Millisecond)
			}
		}
		// Yield to avoid a busy loop
		time.Sleep(100 * time.Microsecond)
	}
}

// writeUSB sends one response frame, handling partial writes
func writeUSB(frame []byte) {
	written := 0
	for written < len(frame) {
		n, err := USBWriteBytes(frame[written:])
		if err != nil || n == 0 {
			// Likely disconnect; after several failures drop the link state
			consecutiveWriteFailures++
			if consecutiveWriteFailures > 10 {
				usbWasDisconnected = true
				consecutiveWriteFailures = 0
				inputBuffer.Reset()
			}
			return
		}
		written += n
	}
	consecutiveWriteFailures = 0
	framesSent++
}

// itoa converts int to string without importing strconv (for embedded)
func itoa(i int) string {
	if i == 0 {
		return "0"
	}

	negative := i < 0
	if negative {
		i = -i
	}

	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}

	if negative {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}
