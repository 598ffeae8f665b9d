// Package protocol implements the controller's telemetry wire format.
//
// Every controller event travels as one message block:
//
//	[len][0x10|seq][msgid][kind][phase][state][clock][crc16 hi][crc16 lo][0x7E]
//
// msgid through clock are VLQ encoded. len covers the whole block.
package protocol

// Version represents the telemetry protocol version
const Version = "1"

// Message block layout
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10

	// Message sequence masks
	MessageSeqMask = 0x0F
)

// Message identifiers
const (
	MsgIDEvent = 1
)
