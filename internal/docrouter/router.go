// Package docrouter decides, per uploaded object, which text-extraction
// service handles it and drives that call.
package docrouter

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/cloudevents/sdk-go/v2/event"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/hio-docpipe/config"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/extract"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/logging"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/metrics"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/sink"
)

const previewLen = 50

// DocumentExtractor handles the extraction branch.
type DocumentExtractor interface {
	ExtractDocument(ctx context.Context, uri, mimeType string) (*extract.Extraction, error)
}

// ImageAnnotator handles the OCR branch.
type ImageAnnotator interface {
	DetectText(ctx context.Context, uri string) (*extract.Extraction, error)
}

// Deps are the collaborators a Router dispatches to. Nil Sink, Limiter and
// Logger get no-op defaults.
type Deps struct {
	Documents DocumentExtractor
	Images    ImageAnnotator
	Sink      sink.Sink
	Limiter   *rate.Limiter
	Logger    *zap.Logger
}

// Outcome describes what happened to one object.
type Outcome struct {
	URI       string `json:"uri"`
	Branch    Branch `json:"branch"`
	Extension string `json:"extension"`
	Text      string `json:"text,omitempty"`
	Pages     int    `json:"pages,omitempty"`
}

type Router struct {
	configErr error
	docs      DocumentExtractor
	images    ImageAnnotator
	sink      sink.Sink
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// New builds a router. Configuration problems are kept and reported on every
// invocation rather than failing construction, so the event boundary can log
// them where the operator looks.
func New(cfg *config.Config, deps Deps) *Router {
	r := &Router{
		docs:    deps.Documents,
		images:  deps.Images,
		sink:    deps.Sink,
		limiter: deps.Limiter,
		logger:  deps.Logger,
	}
	if cfg == nil {
		r.configErr = errors.New("no configuration loaded")
	} else {
		r.configErr = cfg.ValidateRouter()
	}
	if r.sink == nil {
		r.sink = sink.None{}
	}
	if r.limiter == nil {
		r.limiter = rate.NewLimiter(rate.Inf, 0)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// Route validates ev, picks a branch and runs it. Unsupported extensions
// are skipped and return a nil error.
func (r *Router) Route(ctx context.Context, ev StorageEvent) (*Outcome, error) {
	log := logging.FromContext(ctx, r.logger)

	if r.configErr != nil {
		metrics.RecordEvent("none", metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: %w", ErrConfigMissing, r.configErr)
	}
	if err := ev.Validate(); err != nil {
		metrics.RecordEvent("none", metrics.OutcomeRejected)
		return nil, err
	}

	uri := ev.URI()
	log = log.With(zap.String("uri", uri))
	log.Info("processing document")

	branch, ext := Classify(ev.Name)
	out := &Outcome{URI: uri, Branch: branch, Extension: ext}

	if branch == BranchUnsupported {
		log.Info("unsupported file type, skipping",
			zap.String("extension", ext),
			zap.String("name", ev.Name))
		metrics.RecordEvent(string(branch), metrics.OutcomeSkipped)
		return out, nil
	}

	log.Info("branch selected", zap.String("branch", string(branch)))

	if err := r.limiter.Wait(ctx); err != nil {
		metrics.RecordEvent(string(branch), metrics.OutcomeFailed)
		return out, &DownstreamError{URI: uri, Branch: branch, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	start := time.Now()
	res, err := r.dispatch(ctx, branch, uri, ext)
	metrics.ObserveDownstream(string(branch), time.Since(start))
	if err != nil {
		metrics.RecordEvent(string(branch), metrics.OutcomeFailed)
		return out, &DownstreamError{URI: uri, Branch: branch, Err: err}
	}

	out.Text = res.Text
	out.Pages = res.Pages
	log.Info("extracted text",
		zap.Int("chars", utf8.RuneCountInString(res.Text)),
		zap.Int("pages", res.Pages),
		zap.String("preview", preview(res.Text)))

	rec := sink.Record{
		URI:         uri,
		Bucket:      ev.Bucket,
		Name:        ev.Name,
		Branch:      string(branch),
		MimeType:    res.MimeType,
		Text:        res.Text,
		Pages:       res.Pages,
		ProcessedAt: time.Now().UTC(),
	}
	if err := r.sink.Store(ctx, rec); err != nil {
		metrics.RecordEvent(string(branch), metrics.OutcomeFailed)
		return out, &DownstreamError{URI: uri, Branch: branch, Err: fmt.Errorf("store result: %w", err)}
	}

	log.Info("processed document", zap.String("branch", string(branch)))
	metrics.RecordEvent(string(branch), metrics.OutcomeProcessed)
	return out, nil
}

func (r *Router) dispatch(ctx context.Context, branch Branch, uri, ext string) (*extract.Extraction, error) {
	var (
		res *extract.Extraction
		err error
	)
	switch branch {
	case BranchExtraction:
		if r.docs == nil {
			return nil, errors.New("no document extractor configured")
		}
		res, err = r.docs.ExtractDocument(ctx, uri, MimeType(ext))
	case BranchOCR:
		if r.images == nil {
			return nil, errors.New("no image annotator configured")
		}
		res, err = r.images.DetectText(ctx, uri)
	default:
		return nil, fmt.Errorf("unknown branch %q", branch)
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &extract.Extraction{}
	}
	if res.MimeType == "" {
		res.MimeType = MimeType(ext)
	}
	return res, nil
}

// HandleEvent is the Cloud Functions boundary. Storage triggers have no
// caller to report to, so every failure is logged and nil is returned; the
// trigger is never asked to retry.
func (r *Router) HandleEvent(ctx context.Context, e event.Event) error {
	ctx = logging.WithRequestID(ctx, e.ID())
	log := logging.FromContext(ctx, r.logger)

	var ev StorageEvent
	if err := e.DataAs(&ev); err != nil {
		log.Warn("could not decode storage event payload",
			zap.String("type", e.Type()),
			zap.Error(err))
	}

	log.Info("storage event received",
		zap.String("type", e.Type()),
		zap.String("bucket", ev.Bucket),
		zap.String("name", ev.Name))

	_, err := r.Route(ctx, ev)
	r.report(log, ev, err)
	return nil
}

func (r *Router) report(log *zap.Logger, ev StorageEvent, err error) {
	if err == nil {
		return
	}

	var derr *DownstreamError
	switch {
	case errors.Is(err, ErrConfigMissing):
		log.Error("configuration error, document not processed", zap.Error(err))
	case errors.Is(err, ErrMalformedEvent):
		log.Error("invalid Cloud Storage event data", zap.Error(err))
	case errors.As(err, &derr):
		log.Error("error processing document",
			zap.String("uri", derr.URI),
			zap.String("branch", string(derr.Branch)),
			zap.Error(derr.Err))
	default:
		log.Error("error processing document", zap.String("uri", ev.URI()), zap.Error(err))
	}
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLen {
		return text
	}
	return string([]rune(text)[:previewLen]) + "..."
}
