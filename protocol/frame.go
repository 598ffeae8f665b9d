package protocol

import "errors"

var ErrUnknownMsgID = errors.New("unknown message id")

// EventFrame is the wire form of one controller event
type EventFrame struct {
	Seq   uint8 // 0-15, filled in by the encoder
	Kind  uint8
	Phase uint8
	State uint8
	Clock uint32 // ms since boot
}

// Encoder builds event message blocks. Not safe for concurrent use.
type Encoder struct {
	seq uint8
	out *ScratchOutput
}

// NewEncoder creates an encoder starting at sequence 0
func NewEncoder() *Encoder {
	return &Encoder{out: NewScratchOutput()}
}

// Encode returns the message block for f. The returned slice is only valid
// until the next call.
func (e *Encoder) Encode(f EventFrame) []byte {
	e.out.Reset()
	cursor := e.out.CurPosition()

	// Header: length placeholder and sequence
	e.out.Output([]byte{0, MessageDest | e.seq})

	EncodeVLQUint(e.out, MsgIDEvent)
	EncodeVLQUint(e.out, uint32(f.Kind))
	EncodeVLQUint(e.out, uint32(f.Phase))
	EncodeVLQUint(e.out, uint32(f.State))
	EncodeVLQUint(e.out, f.Clock)

	// Update length field
	changed := len(e.out.DataSince(cursor))
	e.out.Update(cursor, uint8(changed+MessageTrailerSize))

	crc := CRC16(e.out.DataSince(cursor))
	e.out.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})

	e.seq = (e.seq + 1) & MessageSeqMask
	return e.out.Result()
}

// Decoder reassembles event frames from a byte stream.
// It resynchronizes on the 0x7E trailer after any corrupt block.
type Decoder struct {
	fifo     *FifoBuffer
	synced   bool
	haveSeq  bool
	nextSeq  uint8
	errors   uint32
	gaps     uint32
	overflow uint32
}

// NewDecoder creates a decoder with room for a few dozen pending blocks
func NewDecoder() *Decoder {
	return &Decoder{
		fifo:   NewFifoBuffer(1024),
		synced: true,
	}
}

// Write feeds received bytes. Bytes that do not fit are dropped and counted.
// It never returns an error so it can sit behind io.Copy.
func (d *Decoder) Write(p []byte) (int, error) {
	n := d.fifo.Write(p)
	if n < len(p) {
		d.overflow += uint32(len(p) - n)
	}
	return len(p), nil
}

// Next returns the next complete frame, or false if more data is needed
func (d *Decoder) Next() (EventFrame, bool) {
	for {
		data := d.fifo.Data()
		if len(data) == 0 {
			return EventFrame{}, false
		}

		if !d.synced {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				d.fifo.Pop(len(data))
				return EventFrame{}, false
			}
			d.fifo.Pop(syncPos + 1)
			d.synced = true
			continue
		}

		// Skip leading sync bytes
		if data[0] == MessageValueSync {
			d.fifo.Pop(1)
			continue
		}

		if len(data) < MessageLengthMin {
			return EventFrame{}, false
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.desync()
			continue
		}

		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			d.desync()
			continue
		}

		// Wait for full message
		if len(data) < msgLen {
			return EventFrame{}, false
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.desync()
			continue
		}

		body := append([]byte(nil), data[MessageHeaderSize:msgLen-MessageTrailerSize]...)
		d.fifo.Pop(msgLen)

		f, err := parseEvent(body)
		if err != nil {
			d.errors++
			continue
		}
		f.Seq = seq & MessageSeqMask
		d.trackSeq(f.Seq)
		return f, true
	}
}

// Errors returns the number of corrupt or unparseable blocks seen
func (d *Decoder) Errors() uint32 {
	return d.errors
}

// Gaps returns the number of sequence discontinuities (lost blocks)
func (d *Decoder) Gaps() uint32 {
	return d.gaps
}

// Overflow returns the number of bytes dropped because the buffer was full
func (d *Decoder) Overflow() uint32 {
	return d.overflow
}

// Reset discards buffered data and sequence tracking
func (d *Decoder) Reset() {
	d.fifo.Reset()
	d.synced = true
	d.haveSeq = false
}

func (d *Decoder) desync() {
	d.errors++
	d.synced = false
	// Drop the first byte so the sync search starts past the bad header
	d.fifo.Pop(1)
}

func (d *Decoder) trackSeq(seq uint8) {
	if d.haveSeq && seq != d.nextSeq {
		d.gaps++
	}
	d.haveSeq = true
	d.nextSeq = (seq + 1) & MessageSeqMask
}

func parseEvent(body []byte) (EventFrame, error) {
	msgID, err := DecodeVLQUint(&body)
	if err != nil {
		return EventFrame{}, err
	}
	if msgID != MsgIDEvent {
		return EventFrame{}, ErrUnknownMsgID
	}

	var fields [4]uint32
	for i := range fields {
		if fields[i], err = DecodeVLQUint(&body); err != nil {
			return EventFrame{}, err
		}
	}
	return EventFrame{
		Kind:  uint8(fields[0]),
		Phase: uint8(fields[1]),
		State: uint8(fields[2]),
		Clock: fields[3],
	}, nil
}
