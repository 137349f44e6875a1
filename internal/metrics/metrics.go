// Package metrics exposes the Prometheus collectors tracking decode
// pipeline health. The host binary decides whether/how to serve them;
// this package never starts a listener itself.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DecodeQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "v4l2_codec2_decode_queue_depth",
		Help: "Number of works queued to a Component but not yet finished",
	})

	PicturesReadyTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "v4l2_codec2_pictures_ready_total",
		Help: "Total decoded pictures delivered by VDA",
	})

	FlushTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "v4l2_codec2_flush_total",
		Help: "Total completed flush operations",
	})

	ResetTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "v4l2_codec2_reset_total",
		Help: "Total completed reset operations",
	})

	BufferPoolSpareWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "v4l2_codec2_buffer_pool_spare_waits_total",
		Help: "Total times FetchGraphicBlock backed off on the spare slot",
	})
)

// SetDecodeQueueDepth records the current number of in-flight works.
func SetDecodeQueueDepth(n int) {
	DecodeQueueDepth.Set(float64(n))
}

// RecordPictureReady counts one decoded picture delivered to a Component.
func RecordPictureReady() {
	PicturesReadyTotal.Inc()
}

// RecordFlush counts one completed flush.
func RecordFlush() {
	FlushTotal.Inc()
}

// RecordReset counts one completed reset.
func RecordReset() {
	ResetTotal.Inc()
}

// RecordSpareWait counts one spare-slot backoff in BufferPool.FetchGraphicBlock.
func RecordSpareWait() {
	BufferPoolSpareWaitsTotal.Inc()
}
