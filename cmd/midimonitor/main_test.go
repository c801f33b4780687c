package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PixPMusic/gopher-soundboard/internal/midi"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		msg  midi.Message
		want string
		ok   bool
	}{
		{midi.Message{Status: 0x90, Data1: 12, Data2: 127}, "Note On -- Key: 12", true},
		{midi.Message{Status: 0x90, Data1: 12, Data2: 0}, "Note Off -- Key: 12", true},
		{midi.Message{Status: 0x80, Data1: 7, Data2: 64}, "Note Off -- Key: 7", true},
		{midi.Message{Status: 0xB0, Data1: 48, Data2: 100}, "Control -- Key: 48 Data: 100", true},
		{midi.Message{Status: 0xE0, Data1: 0, Data2: 64}, "", false},
	}
	for _, tt := range tests {
		got, ok := describe(tt.msg)
		assert.Equal(t, tt.ok, ok)
		assert.Contains(t, got, tt.want)
	}
}
