package service

import (
	"context"
	"errors"
	"image"
	"mime/multipart"
	"time"

	apperrors "github.com/anime-shed/barcode-studio-go/internal/errors"
	"github.com/anime-shed/barcode-studio-go/internal/generator"
	"github.com/anime-shed/barcode-studio-go/internal/logger"
	"github.com/anime-shed/barcode-studio-go/internal/observer"
	"github.com/anime-shed/barcode-studio-go/internal/scanner"
	"github.com/anime-shed/barcode-studio-go/internal/symbology"
	"github.com/anime-shed/barcode-studio-go/internal/upload"
	"github.com/anime-shed/barcode-studio-go/internal/worker"
	"github.com/anime-shed/barcode-studio-go/pkg/models"
	"github.com/anime-shed/barcode-studio-go/pkg/validation"

	"github.com/sirupsen/logrus"
)

const (
	noBarcodeMessage = "No barcode detected in the image"
	ocrNote          = "The barcode could not be decoded; data was read from its printed text."
	ocrType          = "Text (OCR)"
)

// BarcodeService defines the generation and scanning operations exposed over HTTP and the CLI
type BarcodeService interface {
	// Generate validates one request and renders it
	Generate(ctx context.Context, req models.GenerateRequest) (*generator.Result, error)
	// GenerateBatch renders independent requests concurrently; results keep request order
	GenerateBatch(ctx context.Context, req models.BatchRequest) (*models.BatchResponse, error)
	// ScanUpload stores a multipart upload, scans it and always deletes it
	ScanUpload(ctx context.Context, fh *multipart.FileHeader, req models.ScanRequest) (*models.ScanResponse, error)
	// ScanImage scans an already decoded image
	ScanImage(ctx context.Context, img image.Image, req models.ScanRequest) (*models.ScanResponse, error)
	// Types returns the symbology catalog
	Types() models.TypesResponse
}

// Dependencies groups what the service is built from.
type Dependencies struct {
	Pipeline  *generator.Pipeline
	Scanner   *scanner.Scanner
	Uploads   *upload.Store
	Pool      *worker.Pool
	Events    observer.Subject
	Validator *validation.RequestValidator
	Quality   *validation.QualityValidator
	Logger    logrus.FieldLogger
}

type barcodeService struct {
	pipeline  *generator.Pipeline
	scanner   *scanner.Scanner
	uploads   *upload.Store
	pool      *worker.Pool
	events    observer.Subject
	validator *validation.RequestValidator
	quality   *validation.QualityValidator
	log       logrus.FieldLogger
}

// NewBarcodeService creates the service, filling unset dependencies with defaults.
func NewBarcodeService(deps Dependencies) BarcodeService {
	s := &barcodeService{
		pipeline:  deps.Pipeline,
		scanner:   deps.Scanner,
		uploads:   deps.Uploads,
		pool:      deps.Pool,
		events:    deps.Events,
		validator: deps.Validator,
		quality:   deps.Quality,
		log:       deps.Logger,
	}
	if s.log == nil {
		s.log = logger.Logger
	}
	if s.pipeline == nil {
		s.pipeline = generator.New(generator.WithLogger(s.log))
	}
	if s.scanner == nil {
		s.scanner = scanner.New(scanner.WithLogger(s.log))
	}
	if s.pool == nil {
		s.pool = worker.NewPool(0)
	}
	if s.validator == nil {
		s.validator = validation.NewRequestValidator(validation.DefaultLimits())
	}
	if s.quality == nil {
		s.quality = validation.NewQualityValidator()
	}
	return s
}

func (s *barcodeService) Generate(ctx context.Context, req models.GenerateRequest) (*generator.Result, error) {
	if err := s.validator.ValidateGenerate(req); err != nil {
		s.publish(ctx, observer.Event{
			EventType:    observer.GenerationFailed,
			Symbology:    req.Type,
			Format:       req.Format,
			ErrorMessage: err.Error(),
		})
		return nil, err
	}
	return s.render(ctx, req)
}

// render runs a validated request through the pipeline and reports it.
func (s *barcodeService) render(ctx context.Context, req models.GenerateRequest) (*generator.Result, error) {
	start := time.Now()
	res, err := s.pipeline.Generate(ctx, req.Type, req.Data, req.Format, req.Options)
	ev := observer.Event{
		Symbology:      req.Type,
		Format:         req.Format,
		ProcessingTime: time.Since(start),
	}
	if res != nil {
		ev.Symbology = res.Type
		ev.Format = res.Format
	}

	switch {
	case err != nil:
		ev.EventType = observer.GenerationFailed
		ev.ErrorMessage = err.Error()
		s.publish(ctx, ev)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("Generation cancelled", err)
		}
		return nil, apperrors.NewInternalError("Generation failed", err)
	case res.Simulated():
		ev.EventType = observer.GenerationFallback
		ev.Success = true
	case res.Success:
		ev.EventType = observer.GenerationCompleted
		ev.Success = true
	default:
		ev.EventType = observer.GenerationFailed
		ev.ErrorMessage = res.Error
	}
	s.publish(ctx, ev)
	return res, nil
}

func (s *barcodeService) GenerateBatch(ctx context.Context, req models.BatchRequest) (*models.BatchResponse, error) {
	if err := s.validator.ValidateBatch(req); err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]*generator.Result, len(req.Items))
	err := s.pool.Run(ctx, len(req.Items), func(ctx context.Context, i int) {
		results[i] = s.batchItem(ctx, req.Items[i])
	})
	if err != nil {
		return nil, apperrors.NewTimeoutError("Batch generation interrupted", err)
	}

	return &models.BatchResponse{
		Results:           results,
		ProcessingTimeSec: time.Since(start).Seconds(),
	}, nil
}

// batchItem never fails the batch: every problem, panics included, becomes
// that item's result.
func (s *barcodeService) batchItem(ctx context.Context, item models.GenerateRequest) (res *generator.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{
				"type":  item.Type,
				"panic": r,
			}).Error("Batch item panicked")
			res = &generator.Result{Success: false, Type: item.Type, Format: item.Format, Error: "Internal error"}
		}
	}()

	res, err := s.Generate(ctx, item)
	if err == nil {
		return res
	}

	msg := "Internal error"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Type != apperrors.ErrorTypeInternal {
		msg = appErr.Message
	} else {
		s.log.WithError(err).WithField("type", item.Type).Error("Batch item failed")
	}
	return &generator.Result{Success: false, Type: item.Type, Format: item.Format, Error: msg}
}

func (s *barcodeService) ScanUpload(ctx context.Context, fh *multipart.FileHeader, req models.ScanRequest) (*models.ScanResponse, error) {
	if s.uploads == nil {
		return nil, apperrors.NewCapabilityUnavailableError("Uploads are not configured", nil)
	}
	up, err := s.uploads.Save(fh)
	if err != nil {
		return nil, err
	}
	defer up.Release()

	img, err := up.Image()
	if err != nil {
		return nil, err
	}
	return s.ScanImage(ctx, img, req)
}

func (s *barcodeService) ScanImage(ctx context.Context, img image.Image, req models.ScanRequest) (*models.ScanResponse, error) {
	start := time.Now()
	res, err := s.scanner.Scan(ctx, img, scanner.Options{TryHarder: req.TryHarder, Multi: req.Multi})

	resp := &models.ScanResponse{}
	switch {
	case errors.Is(err, scanner.ErrNotFound):
		resp.Success = false
		resp.Error = noBarcodeMessage
		resp.Quality = s.quality.ValidateScanQuality(scanner.Measure(img))
	case err != nil:
		s.publish(ctx, observer.Event{EventType: observer.ScanFailed, ErrorMessage: err.Error(), ProcessingTime: time.Since(start)})
		return nil, apperrors.NewInternalError("Scan failed", err)
	case len(res.Symbols) > 0:
		resp.Success = true
		for _, sym := range res.Symbols {
			resp.Symbols = append(resp.Symbols, models.ScannedSymbol{
				Type:   sym.Kind.Label(),
				Format: sym.Kind.ID(),
				Data:   sym.Text,
				Points: toModelPoints(sym.Points),
				Source: "decoder",
			})
		}
		first := resp.Symbols[0]
		resp.Type, resp.Data, resp.Location = first.Type, first.Data, first.Points
	default:
		resp.Success = true
		resp.Type = ocrType
		resp.Data = res.OCRText
		resp.Note = ocrNote
		resp.Symbols = []models.ScannedSymbol{{Type: ocrType, Format: "ocr", Data: res.OCRText, Source: "ocr"}}
	}

	if req.ExpectedText != "" && resp.Success {
		resp.Match = scanner.MatchText(req.ExpectedText, resp.Data, 0)
	}
	resp.ProcessingTimeSec = time.Since(start).Seconds()

	ev := observer.Event{
		EventType:      observer.ScanCompleted,
		Symbology:      resp.Type,
		ProcessingTime: time.Since(start),
		Success:        resp.Success,
		Metadata:       map[string]interface{}{"symbols": len(resp.Symbols)},
	}
	if !resp.Success {
		ev.EventType = observer.ScanFailed
		ev.Metadata["hints"] = validation.ConvertHintsToMessages(resp.Quality)
	}
	s.publish(ctx, ev)
	return resp, nil
}

func (s *barcodeService) Types() models.TypesResponse {
	out := models.TypesResponse{"1d": {}, "2d": {}}
	for _, sym := range symbology.All() {
		key := "2d"
		if sym.Family() == symbology.FamilyLinear {
			key = "1d"
		}
		out[key] = append(out[key], models.TypeInfo{
			Value:       sym.Wire(),
			Label:       sym.Label(),
			Description: sym.Description(),
		})
	}
	return out
}

func (s *barcodeService) publish(ctx context.Context, ev observer.Event) {
	if s.events == nil {
		return
	}
	s.events.NotifyObservers(ctx, ev)
}

func toModelPoints(pts []image.Point) []models.Point {
	if len(pts) == 0 {
		return nil
	}
	out := make([]models.Point, len(pts))
	for i, p := range pts {
		out[i] = models.Point{X: p.X, Y: p.Y}
	}
	return out
}

