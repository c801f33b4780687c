package midi

// Status nibbles of the channel voice messages the controller sends
const (
	KindNoteOff       uint8 = 0x8
	KindNoteOn        uint8 = 0x9
	KindControlChange uint8 = 0xB
)

// Message is a raw 3-byte channel voice message (status, data1, data2)
type Message struct {
	Status uint8
	Data1  uint8
	Data2  uint8
}

// Kind returns the high nibble of the status byte
func (m Message) Kind() uint8 {
	return (m.Status & 0xF0) >> 4
}

// Channel returns the low nibble of the status byte
func (m Message) Channel() uint8 {
	return m.Status & 0x0F
}

// Bytes returns the wire form of the message
func (m Message) Bytes() []byte {
	return []byte{m.Status, m.Data1, m.Data2}
}

// FromBytes converts a wire message into a Message. Only 3-byte channel
// voice messages are accepted; SysEx, realtime and 2-byte messages are not.
func FromBytes(b []byte) (Message, bool) {
	if len(b) != 3 || b[0] < 0x80 || b[0] >= 0xF0 {
		return Message{}, false
	}
	return Message{Status: b[0], Data1: b[1] & 0x7F, Data2: b[2] & 0x7F}, true
}
