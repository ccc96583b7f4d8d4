package pipeline

import "time"

// Sink consumes progress events.
type Sink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// NullSink drops every event.
type NullSink struct{}

func (NullSink) OnEvent(Event) {}

// Emit sends one event to sink, tolerating a nil sink.
func Emit(sink Sink, path string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Path: path, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
