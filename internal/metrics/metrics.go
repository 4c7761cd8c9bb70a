package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts cache lookups served from disk, per cache domain.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelquiz_cache_hits_total",
		Help: "Cache lookups that returned a stored entry.",
	}, []string{"domain"})

	// CacheMisses counts cache lookups that found nothing usable.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelquiz_cache_misses_total",
		Help: "Cache lookups that missed, including corrupted entries.",
	}, []string{"domain"})

	// CacheEvictions counts entries removed by sweeps or explicit clears.
	CacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelquiz_cache_evictions_total",
		Help: "Cache entries removed by age sweeps or explicit clears.",
	}, []string{"domain"})

	// ActiveSessions tracks background processing sessions currently registered.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reelquiz_active_sessions",
		Help: "Background video-processing sessions currently tracked.",
	})

	// FramesDecoded counts individual frames decoded by the sampler.
	FramesDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reelquiz_frames_decoded_total",
		Help: "Video frames decoded across all sampling runs.",
	})
)
