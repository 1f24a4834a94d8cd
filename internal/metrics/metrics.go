// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordQuestionCreated()
	RecordAnswerCreated()
	RecordVoteCast(target string, voteType int)
	RecordAnswerAccepted()
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	questionsCreated prometheus.Counter
	answersCreated   prometheus.Counter
	votesCast        *prometheus.CounterVec
	answersAccepted  prometheus.Counter
	httpStatus       *prometheus.CounterVec
	requestDuration  prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		questionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qanda_questions_created_total",
			Help: "作成された質問の合計数",
		}),
		answersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qanda_answers_created_total",
			Help: "作成された回答の合計数",
		}),
		votesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qanda_votes_cast_total",
			Help: "対象・向き別の投票数（再投票を含む）",
		}, []string{"target", "direction"}),
		answersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qanda_answers_accepted_total",
			Help: "採用状態が変化した回答の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qanda_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "qanda_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.questionsCreated,
		c.answersCreated,
		c.votesCast,
		c.answersAccepted,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordQuestionCreated は質問の作成を記録する。
func (c *Collector) RecordQuestionCreated() {
	c.questionsCreated.Inc()
}

// RecordAnswerCreated は回答の作成を記録する。
func (c *Collector) RecordAnswerCreated() {
	c.answersCreated.Inc()
}

// RecordVoteCast は投票を記録する。voteTypeが正ならup、それ以外はdown。
func (c *Collector) RecordVoteCast(target string, voteType int) {
	direction := "down"
	if voteType > 0 {
		direction = "up"
	}
	c.votesCast.WithLabelValues(target, direction).Inc()
}

// RecordAnswerAccepted は回答の採用を記録する。
func (c *Collector) RecordAnswerAccepted() {
	c.answersAccepted.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はHTTPリクエストの処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// Nop は何も記録しないMetricsCollector。テストやseedコマンドで使用する。
type Nop struct{}

func (Nop) RecordQuestionCreated()              {}
func (Nop) RecordAnswerCreated()                {}
func (Nop) RecordVoteCast(string, int)          {}
func (Nop) RecordAnswerAccepted()               {}
func (Nop) RecordHTTPStatus(int)                {}
func (Nop) RecordRequestDuration(time.Duration) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
