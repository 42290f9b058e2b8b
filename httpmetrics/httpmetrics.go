// Package httpmetrics counts served requests, tagged by path.
package httpmetrics

import (
	"net/http"

	"github.com/golang/glog"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

type Wrapper struct {
	requestCount     *stats.Int64Measure
	requestCountView *view.View

	inner http.Handler
}

func New(inner http.Handler) *Wrapper {
	w := &Wrapper{}

	w.requestCount = stats.Int64("requests", "", stats.UnitDimensionless)
	w.requestCountView = &view.View{
		Name:        "requests",
		Description: "Counter of requests that have been handled",

		TagKeys: []tag.Key{tag.MustNewKey("path")},

		Measure:     w.requestCount,
		Aggregation: view.Count(),
	}

	w.inner = inner

	return w
}

func (w *Wrapper) RegisterMetrics() {
	view.Register(w.requestCountView)
}

func (w *Wrapper) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	w.inner.ServeHTTP(rw, r)

	glog.V(1).Infof("Served path=%q remoteaddr=%q", r.URL.Path, r.RemoteAddr)

	stats.RecordWithOptions(
		r.Context(),
		stats.WithTags(tag.Insert(tag.MustNewKey("path"), r.URL.Path)),
		stats.WithMeasurements(w.requestCount.M(1)))
}
