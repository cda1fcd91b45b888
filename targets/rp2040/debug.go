//go:build rp2040

package main

import (
	"machine"
)

var debugUART *machine.UART

// InitDebugUART initializes UART0 on GPIO0 (TX) and GPIO1 (RX) for debugging
// Baud rate: 115200
func InitDebugUART() {
	debugUART = machine.UART0

	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	})
	if err != nil {
		debugUART = nil
		return
	}

	DebugPrintln("=== LazyServo Debug UART Initialized ===")
	DebugPrintln("Baud: 115200, TX=GPIO0, RX=GPIO1")
}

// DebugPrintln writes a string to the debug UART with newline.
// Installed as the core debug writer.
func DebugPrintln(s string) {
	if debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
