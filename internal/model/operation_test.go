package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name   string
		want   EventType
		target string
	}{
		{"start", EventStart, ""},
		{"end", EventEnd, ""},
		{"start-call-movementplan", EventCallStart, "movementplan"},
		{"end-call-movementplan", EventCallEnd, "movementplan"},
		{"start-call-a-b", EventCallStart, "a"},
		{"start-call", EventCallStart, ""},
		{"start-db-get", EventDbGetStart, ""},
		{"end-db-get", EventDbGetEnd, ""},
		{"start-db-set", EventDbSetStart, ""},
		{"end-db-set", EventDbSetEnd, ""},
		{"starting", EventUnknown, ""},
		{"", EventUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, target := DecodeEvent(tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.target, target)
		})
	}
}

func TestEventTypeGroups(t *testing.T) {
	assert.True(t, EventCallStart.IsCall())
	assert.True(t, EventCallEnd.IsCall())
	assert.False(t, EventStart.IsCall())

	assert.True(t, EventDbGetStart.IsDB())
	assert.True(t, EventDbSetEnd.IsDB())
	assert.False(t, EventCallEnd.IsDB())
	assert.False(t, EventUnknown.IsDB())
}
