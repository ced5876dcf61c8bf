package metrics

import (
	"net/http"

	"github.com/shouni/go-storyboard-kit/pkg/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storyboard"

// Collector はストーリーボード生成とチャットの結果を Prometheus の指標として記録します。
// pipeline.Recorder と chat.Recorder の両方を満たします。
type Collector struct {
	registry *prometheus.Registry

	scenesGenerated prometheus.Counter
	scenesFailed    *prometheus.CounterVec
	runsFinished    *prometheus.CounterVec
	chatTurns       *prometheus.CounterVec
}

// NewCollector は専用のレジストリを持つ Collector を生成します。
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		scenesGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenes_generated_total",
			Help:      "Total number of scene images generated successfully.",
		}),
		scenesFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenes_failed_total",
			Help:      "Total number of scene image failures, partitioned by reason.",
		}, []string{"reason"}),
		runsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_finished_total",
			Help:      "Total number of pipeline runs, partitioned by final status.",
		}, []string{"status"}),
		chatTurns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Total number of chat turns, partitioned by result.",
		}, []string{"result"}),
	}
}

func (c *Collector) SceneGenerated() {
	c.scenesGenerated.Inc()
}

func (c *Collector) SceneFailed(rateLimited bool) {
	reason := "error"
	if rateLimited {
		reason = "rate_limited"
	}
	c.scenesFailed.WithLabelValues(reason).Inc()
}

func (c *Collector) RunFinished(status domain.RunStatus) {
	c.runsFinished.WithLabelValues(string(status)).Inc()
}

func (c *Collector) ChatTurn(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	c.chatTurns.WithLabelValues(result).Inc()
}

// Registry は指標の登録先を返します。
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler は /metrics 用の HTTP ハンドラを返します。
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
