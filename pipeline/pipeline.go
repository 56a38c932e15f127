package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/linguacast/audio"
	"github.com/kbukum/linguacast/diarization"
	apperrors "github.com/kbukum/linguacast/errors"
	"github.com/kbukum/linguacast/history"
	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/observability"
	"github.com/kbukum/linguacast/provider"
	"github.com/kbukum/linguacast/resilience"
)

// Pipeline orchestrates the stages of a run. It is safe for concurrent use.
type Pipeline struct {
	cfg      Config
	stages   Stages
	recorder history.Recorder
	metrics  *observability.Metrics
	log      *logger.Logger

	persisting sync.WaitGroup
}

type Option func(*Pipeline)

// WithRecorder persists the results of runs that carry a user id.
func WithRecorder(r history.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func WithLogger(log *logger.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// New validates the stages and returns a Pipeline.
func New(cfg Config, stages Stages, opts ...Option) (*Pipeline, error) {
	switch {
	case stages.Segmenter == nil:
		return nil, apperrors.MissingField("segmenter")
	case stages.Transcriber == nil:
		return nil, apperrors.MissingField("transcriber")
	case stages.Translator == nil:
		return nil, apperrors.MissingField("translator")
	case stages.Synthesizer == nil:
		return nil, apperrors.MissingField("synthesizer")
	}
	cfg.ApplyDefaults()
	p := &Pipeline{cfg: cfg, stages: stages, log: logger.WithComponent("pipeline")}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ProcessBytes decodes a WAV buffer and processes it. Undecodable input is
// processed as silence.
func (p *Pipeline) ProcessBytes(ctx context.Context, data []byte, src, tgt, userID string) Response {
	w, err := audio.DecodeOrEmpty(data)
	if err != nil {
		p.log.WithContext(ctx).Warn("audio decode failed; processing as silence",
			logger.Fields(logger.FieldError, err.Error(), "bytes", len(data)))
	}
	return p.Process(ctx, Request{Audio: w, SourceLang: src, TargetLang: tgt, UserID: userID})
}

// segmentResult is the outcome of one segment. ok is false for segments
// skipped because of a blank transcript.
type segmentResult struct {
	result  Result
	ok      bool
	outcome provider.Outcome
}

// Process runs the pipeline over req.Audio.
func (p *Pipeline) Process(ctx context.Context, req Request) (resp Response) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "pipeline.process",
		attribute.String(observability.AttrSourceLang, req.SourceLang),
		attribute.String(observability.AttrTargetLang, req.TargetLang),
	)
	if req.UserID != "" {
		span.SetAttributes(attribute.String(observability.AttrUserID, req.UserID))
	}
	defer span.End()
	log := p.log.WithContext(ctx)
	segments := 0

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("pipeline panic: %v", r)
			log.Error("pipeline run failed", logger.ErrorFields("process", err))
			observability.SetSpanError(ctx, err)
			resp = errorResponse(err)
		}
		span.SetAttributes(attribute.String(observability.AttrOutcome, resp.Outcome.String()))
		p.metrics.RecordPipeline(ctx, segments, resp.Outcome.String())
		fields := logger.DurationFields("process", time.Since(start))
		fields["segments"], fields["results"], fields["outcome"] = segments, len(resp.Results), resp.Outcome.String()
		log.Debug("pipeline run finished", fields)
	}()

	segs, segOutcome := p.stages.Segmenter.SegmentWithOutcome(ctx, req.Audio)
	segments = len(segs)

	collected := make([]segmentResult, len(segs))
	bulkhead := resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "pipeline-segments",
		MaxConcurrent: p.cfg.MaxParallel,
	})
	var wg sync.WaitGroup
	for i, seg := range segs {
		i, seg := i, seg
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					err := fmt.Errorf("segment %d panic: %v", i, r)
					log.Error("segment failed", logger.ErrorFields("process_segment", err))
					collected[i] = segmentResult{
						result:  Result{SpeakerLabel: seg.Speaker, Error: err.Error()},
						ok:      true,
						outcome: provider.OutcomeDegraded,
					}
				}
			}()
			err := bulkhead.Execute(ctx, func() error {
				collected[i] = p.processSegment(ctx, i, seg, req)
				return nil
			})
			if err != nil {
				collected[i] = segmentResult{outcome: provider.OutcomeDegraded}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		observability.SetSpanError(ctx, err)
		log.Info("pipeline run cancelled", logger.ErrorFields("process", err))
		return errorResponse(err)
	}

	outcomes := []provider.Outcome{segOutcome}
	results := make([]Result, 0, len(collected))
	for _, c := range collected {
		outcomes = append(outcomes, c.outcome)
		if c.ok {
			results = append(results, c.result)
		}
	}

	resp = Response{Results: results, Outcome: provider.Worst(outcomes...)}
	if len(results) == 0 {
		resp.Result = NoSpeechResult()
		return resp
	}
	resp.Result = results[0]

	if req.UserID != "" && p.recorder != nil {
		p.persist(ctx, req, results)
	}
	return resp
}

func (p *Pipeline) processSegment(ctx context.Context, idx int, seg diarization.SpeakerSegment, req Request) segmentResult {
	ctx, span := observability.StartSpan(ctx, "pipeline.segment",
		attribute.Int(observability.AttrSegment, idx),
	)
	defer span.End()

	text, tOutcome := p.stages.Transcriber.TranscribeWithOutcome(ctx, seg.Audio, req.SourceLang)
	if strings.TrimSpace(text) == "" {
		return segmentResult{outcome: tOutcome}
	}

	res := Result{OriginalText: text, SpeakerLabel: seg.Speaker}
	translated, trOutcome, err := p.stages.Translator.TranslateWithOutcome(ctx, text, req.SourceLang, req.TargetLang)
	res.TranslatedText = translated
	if err != nil {
		if res.TranslatedText == "" {
			res.TranslatedText = text
		}
		res.Error = errorMessage(err)
		// An unchanged text across different languages is reported the
		// same way as on /translate.
		if res.TranslatedText == text && req.SourceLang != req.TargetLang {
			res.Error = apperrors.RateLimited().Message
		}
	}

	speech, sOutcome := p.stages.Synthesizer.SynthesizeWithOutcome(ctx, res.TranslatedText, req.TargetLang)
	if !speech.IsEmpty() {
		data, err := audio.Encode(speech)
		if err != nil {
			p.log.WithContext(ctx).Warn("encoding synthesized audio failed", logger.ErrorFields("encode_audio", err))
			sOutcome = provider.OutcomeDegraded
		} else {
			res.AudioData = data
		}
	}

	return segmentResult{result: res, ok: true, outcome: provider.Worst(tOutcome, trOutcome, sOutcome)}
}

// persist hands results to the recorder outside the caller's lifetime.
func (p *Pipeline) persist(ctx context.Context, req Request, results []Result) {
	p.persisting.Add(1)
	go func() {
		defer p.persisting.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.PersistTimeout)
		defer cancel()
		log := p.log.WithContext(ctx)
		defer func() {
			if r := recover(); r != nil {
				log.Error("persisting results panicked", logger.Fields("panic", fmt.Sprint(r)))
			}
		}()

		for _, r := range results {
			rec := history.Record{
				OriginalText:   r.OriginalText,
				TranslatedText: r.TranslatedText,
				SourceLang:     req.SourceLang,
				TargetLang:     req.TargetLang,
				SpeakerID:      r.SpeakerLabel,
				Audio:          r.AudioData,
			}
			if err := p.recorder.Record(ctx, req.UserID, rec); err != nil {
				log.Warn("persisting result failed", logger.ErrorFields("persist", err))
			}
		}
	}()
}

// Wait blocks until detached persistence has finished.
func (p *Pipeline) Wait() {
	p.persisting.Wait()
}

func errorResponse(err error) Response {
	r := ErrorResult(err)
	return Response{Result: r, Results: []Result{r}, Outcome: provider.OutcomeError}
}

func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
