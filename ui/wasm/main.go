//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/hex"
	"syscall/js"

	"crosswalk/core"
	"crosswalk/protocol"
)

// One decoder per page so a capture can be pasted in pieces
var decoder = protocol.NewDecoder()

func main() {
	// Export functions to JavaScript
	js.Global().Set("crosswalkWasm", js.ValueOf(map[string]interface{}{
		"decodeTelemetry": js.FuncOf(decodeTelemetryWrapper),
		"resetDecoder":    js.FuncOf(resetDecoderWrapper),
		"decoderStats":    js.FuncOf(decoderStatsWrapper),
		"crc16":           js.FuncOf(crc16Wrapper),
		"version":         protocol.Version,
	}))

	// Keep the program running
	select {}
}

// decodeTelemetryWrapper feeds captured telemetry bytes to the decoder
// Args: hexString (string)
// Returns: {events: [{kind, phase, state, clock, seq, text}], error: string}
func decodeTelemetryWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeEventsResult(nil, "missing hex string argument")
	}

	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return makeEventsResult(nil, "invalid hex string: "+err.Error())
	}

	decoder.Write(data)

	var events []interface{}
	for {
		f, ok := decoder.Next()
		if !ok {
			break
		}
		ev := core.EventFromFrame(f)
		events = append(events, map[string]interface{}{
			"kind":  ev.Kind.String(),
			"phase": ev.Phase.String(),
			"state": ev.State.String(),
			"clock": int(ev.Clock),
			"seq":   int(f.Seq),
			"text":  ev.String(),
		})
	}

	return makeEventsResult(events, "")
}

// resetDecoderWrapper discards buffered bytes, e.g. when a new capture starts
func resetDecoderWrapper(this js.Value, args []js.Value) interface{} {
	decoder.Reset()
	return js.Undefined()
}

// decoderStatsWrapper reports decoder health
// Returns: {errors, gaps, overflow}
func decoderStatsWrapper(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(map[string]interface{}{
		"errors":   int(decoder.Errors()),
		"gaps":     int(decoder.Gaps()),
		"overflow": int(decoder.Overflow()),
	})
}

// crc16Wrapper calculates CRC16 checksum
// Args: hexString (string)
// Returns: number (uint16)
func crc16Wrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(0)
	}

	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf(0)
	}

	return js.ValueOf(int(protocol.CRC16(data)))
}

func makeEventsResult(events []interface{}, errMsg string) interface{} {
	if events == nil {
		events = []interface{}{}
	}
	return js.ValueOf(map[string]interface{}{
		"events": events,
		"error":  errMsg,
	})
}
