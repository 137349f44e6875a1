package codec

import (
	"testing"
	"time"
)

func TestWorkFinished(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		work Work
		want bool
	}{
		{
			name: "no worklets processed yet",
			work: Work{Input: WorkInput{Timestamp: now}},
			want: false,
		},
		{
			name: "still holding input buffers",
			work: Work{
				Input:             WorkInput{Timestamp: now, Buffers: []Buffer{{Size: 100}}},
				WorkletsProcessed: 1,
			},
			want: false,
		},
		{
			name: "empty output work with no worklets",
			work: Work{
				Input:             WorkInput{Timestamp: now},
				WorkletsProcessed: 1,
			},
			want: true,
		},
		{
			name: "picture worklet at or after input timestamp",
			work: Work{
				Input:             WorkInput{Timestamp: now},
				Worklets:          []Worklet{{Timestamp: now}},
				WorkletsProcessed: 1,
			},
			want: true,
		},
		{
			name: "picture worklet before input timestamp is not finished",
			work: Work{
				Input:             WorkInput{Timestamp: now.Add(1)},
				Worklets:          []Worklet{{Timestamp: now}},
				WorkletsProcessed: 1,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.work.Finished(); got != tt.want {
				t.Errorf("Finished() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBitstreamBufferIsFlush(t *testing.T) {
	if !(BitstreamBuffer{ID: FlushBufferID}).IsFlush() {
		t.Error("expected flush sentinel id to report IsFlush")
	}
	if (BitstreamBuffer{ID: 5}).IsFlush() {
		t.Error("expected ordinary id to not report IsFlush")
	}
}
