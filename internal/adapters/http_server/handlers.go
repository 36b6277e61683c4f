package httpserver

import (
	"bytes"
	"crypto/sha1"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"review_sentiment/internal/adapters/charts"
	"review_sentiment/internal/app"
	"review_sentiment/internal/domain"
)

//go:embed page.html
var pageHTML string

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

type Handlers struct{ X *app.ExplorerService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", h.dashboard)
	s.mux.Get("/v1/options", h.options)
	s.mux.Get("/v1/reviews", h.reviews)
	s.mux.Get("/charts/{name}", h.chart)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors to problem responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidFilter):
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
	default:
		log.Error().Err(err).Msg("dataset unavailable")
		writeProblem(w, http.StatusServiceUnavailable, "Dataset unavailable", "the review dataset could not be loaded")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write JSON body")
	}
}

func filtersFrom(r *http.Request) (app.Filters, error) {
	q := r.URL.Query()
	return app.ParseFilters(q.Get("sentiment"), q.Get("score"), q.Get("product"))
}

func (h *Handlers) options(w http.ResponseWriter, r *http.Request) {
	o, err := h.X.Options(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, o)
}

func (h *Handlers) reviews(w http.ResponseWriter, r *http.Request) {
	f, err := filtersFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := h.X.View(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, v)
}

type chartLinks struct {
	Score, Sentiment, MonthlyCount, MonthlyScore template.URL
}

type pageData struct {
	Options app.Options
	View    app.View
	Cells   [][]string

	// raw control values, echoed back into the form
	Sentiment, Score, Product string

	Charts chartLinks
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	f, err := filtersFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	o, err := h.X.Options(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := h.X.View(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	data := pageData{
		Options:   o,
		View:      v,
		Cells:     cells(v),
		Sentiment: q.Get("sentiment"),
		Score:     q.Get("score"),
		Product:   q.Get("product"),
	}
	link := func(name string) template.URL {
		return template.URL("/charts/" + name + "?" + chartQuery(v.Filters))
	}
	if v.ScoreHistogram != nil {
		data.Charts.Score = link("score")
	}
	if v.SentimentHistogram != nil {
		data.Charts.Sentiment = link("sentiment")
	}
	if v.MonthlyCount != nil {
		data.Charts.MonthlyCount = link("monthly-count")
	}
	if v.MonthlyScore != nil {
		data.Charts.MonthlyScore = link("monthly-score")
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		log.Error().Err(err).Msg("render dashboard failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func chartQuery(f app.Filters) string {
	q := url.Values{}
	if f.Sentiment != "" {
		q.Set("sentiment", string(f.Sentiment))
	}
	if f.Score != nil {
		q.Set("score", strconv.Itoa(*f.Score))
	}
	if f.Product != "" {
		q.Set("product", f.Product)
	}
	return q.Encode()
}

func cells(v app.View) [][]string {
	out := make([][]string, len(v.Rows))
	for i, row := range v.Rows {
		line := make([]string, len(v.Columns))
		for j, c := range v.Columns {
			switch c {
			case domain.ColSummary:
				line[j] = deref(row.Summary)
			case domain.ColCleanedText:
				line[j] = deref(row.CleanedText)
			case domain.ColSentimentLabel:
				if row.SentimentLabel != nil {
					line[j] = row.SentimentLabel.String()
				}
			case domain.ColScore:
				if row.Score != nil {
					line[j] = strconv.Itoa(*row.Score)
				}
			}
		}
		out[i] = line
	}
	return out
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (h *Handlers) chart(w http.ResponseWriter, r *http.Request) {
	f, err := filtersFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := h.X.View(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	name := chi.URLParam(r, "name")
	switch {
	case name == "score" && v.ScoreHistogram != nil:
		x, y := make([]string, len(v.ScoreHistogram)), make([]int, len(v.ScoreHistogram))
		for i, b := range v.ScoreHistogram {
			x[i], y[i] = strconv.Itoa(b.Score), b.Count
		}
		err = charts.Bar(&buf, "Review Score Distribution", "Score", "Count", "teal", x, y)
	case name == "sentiment" && v.SentimentHistogram != nil:
		x, y := make([]string, len(v.SentimentHistogram)), make([]int, len(v.SentimentHistogram))
		for i, b := range v.SentimentHistogram {
			x[i], y[i] = b.Label.String(), b.Count
		}
		err = charts.Bar(&buf, "Sentiment Label Breakdown", "Sentiment", "Count", "orchid", x, y)
	case name == "monthly-count" && v.MonthlyCount != nil:
		x, y := make([]string, len(v.MonthlyCount)), make([]*float64, len(v.MonthlyCount))
		for i, b := range v.MonthlyCount {
			n := float64(b.Count)
			x[i], y[i] = b.Month, &n
		}
		err = charts.Line(&buf, "Monthly Review Count", "Date", "Review Count", "skyblue", x, y)
	case name == "monthly-score" && v.MonthlyScore != nil:
		x, y := make([]string, len(v.MonthlyScore)), make([]*float64, len(v.MonthlyScore))
		for i, b := range v.MonthlyScore {
			x[i], y[i] = b.Month, b.Mean
		}
		err = charts.Line(&buf, "Monthly Average Review Score", "Date", "Average Score", "orange", x, y)
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "chart "+strconv.Quote(name)+" is not available for this selection")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("chart", name).Msg("render chart failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
