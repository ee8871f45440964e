// Package publish turns a directory of member photos into uploaded images, profile pages,
// local QR codes and one index page.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andrejsstepanovs/memberqr/file"
	"github.com/andrejsstepanovs/memberqr/imageconv"
	"github.com/andrejsstepanovs/memberqr/models"
	"github.com/andrejsstepanovs/memberqr/render"
	"github.com/andrejsstepanovs/memberqr/storage"
)

// DefaultSignedURLTTL is how long image links embedded in profile pages stay valid.
const DefaultSignedURLTTL = 365 * 24 * time.Hour

// Config holds everything a publish run needs. It is built once by the caller.
type Config struct {
	PhotosDir    string
	OutputDir    string
	ImagesBucket string
	PagesBucket  string
	CDNBaseURL   string
	ClubName     string
	SignedURLTTL time.Duration
	Extensions   []string
}

// Normalizer converts proprietary photos to a standard format.
type Normalizer interface {
	Normalize(path string) (string, error)
}

// QRWriter saves a QR code encoding content at path.
type QRWriter interface {
	WriteFile(content, path string) error
}

// Recorder keeps a history of runs. It is optional.
type Recorder interface {
	StartRun(run models.Run) error
	RecordArtifact(artifact models.Artifact) error
	FinishRun(run models.Run) error
}

// Result summarises a run.
type Result struct {
	RunID     string
	Pages     []models.PublishedPage
	Artifacts []models.Artifact
	Skipped   []string
	// DirCreated is set when the photo directory did not exist and was created empty.
	DirCreated bool
}

// Publisher runs the pipeline. Runs are sequential; a Publisher is not safe for concurrent use.
type Publisher struct {
	cfg        Config
	storage    storage.Storage
	normalizer Normalizer
	qr         QRWriter
	recorder   Recorder
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithRecorder stores run history in r.
func WithRecorder(r Recorder) Option {
	return func(p *Publisher) {
		p.recorder = r
	}
}

// New returns a Publisher.
func New(cfg Config, store storage.Storage, normalizer Normalizer, qr QRWriter, logger *zap.Logger, opts ...Option) *Publisher {
	if cfg.SignedURLTTL == 0 {
		cfg.SignedURLTTL = DefaultSignedURLTTL
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = file.PhotoExtensions
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Publisher{
		cfg:        cfg,
		storage:    store,
		normalizer: normalizer,
		qr:         qr,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PageURL is the public address of a member page.
func PageURL(cdnBaseURL, baseName string) string {
	return strings.TrimRight(cdnBaseURL, "/") + "/" + url.PathEscape(storage.PageKey(baseName))
}

// QRPath is the local QR code of a member page. Its presence marks the page as already
// issued: idempotence is by filename only, never by content.
func QRPath(outputDir, baseName string) string {
	return filepath.Join(outputDir, baseName+"_qr.png")
}

// Run processes every eligible photo and uploads the index last. Unreadable photos and HEIC
// photos whose JPEG name is already taken are skipped; any other error aborts the run and leaves uploaded artifacts in place.
func (p *Publisher) Run(ctx context.Context) (*Result, error) {
	result := &Result{RunID: uuid.NewString(), Pages: []models.PublishedPage{}}

	if _, err := os.Stat(p.cfg.PhotosDir); os.IsNotExist(err) {
		if err := os.MkdirAll(p.cfg.PhotosDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create photo directory: %w", err)
		}
		p.logger.Info("Photo directory created, add photos and rerun", zap.String("dir", p.cfg.PhotosDir))
		result.DirCreated = true
		return result, nil
	}

	if err := os.MkdirAll(p.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	photos, err := file.Photos(p.cfg.PhotosDir, p.cfg.Extensions)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Found photos", zap.Int("count", len(photos)), zap.String("run", result.RunID))

	run := models.Run{ID: result.RunID, PhotosDir: p.cfg.PhotosDir, StartedAt: p.now()}
	if p.recorder != nil {
		if err := p.recorder.StartRun(run); err != nil {
			return nil, fmt.Errorf("failed to record run start: %w", err)
		}
	}

	for _, photo := range photos {
		artifact, err := p.publishPhoto(ctx, photo)
		if err != nil {
			if !errors.Is(err, imageconv.ErrUnreadableImage) && !errors.Is(err, imageconv.ErrTargetExists) {
				return result, fmt.Errorf("failed to publish %s: %w", photo.Filename, err)
			}
			p.logger.Warn("Skipping photo", zap.String("file", photo.Filename), zap.Error(err))
			artifact = models.Artifact{BaseName: photo.BaseName, DisplayName: photo.DisplayName, SkipReason: err.Error()}
			result.Skipped = append(result.Skipped, photo.Filename)
		} else {
			result.Pages = append(result.Pages, models.PublishedPage{DisplayName: artifact.DisplayName, URL: artifact.PageURL})
		}

		artifact.RunID = result.RunID
		result.Artifacts = append(result.Artifacts, artifact)
		if p.recorder != nil {
			if err := p.recorder.RecordArtifact(artifact); err != nil {
				return result, fmt.Errorf("failed to record artifact %s: %w", photo.Filename, err)
			}
		}
	}

	if err := p.BuildIndex(ctx, result.Pages); err != nil {
		return result, err
	}

	if p.recorder != nil {
		finished := p.now()
		run.FinishedAt = &finished
		run.Published = len(result.Pages)
		run.Skipped = len(result.Skipped)
		if err := p.recorder.FinishRun(run); err != nil {
			return result, fmt.Errorf("failed to record run end: %w", err)
		}
	}

	p.logger.Info("Publish run complete",
		zap.String("run", result.RunID),
		zap.Int("published", len(result.Pages)),
		zap.Int("skipped", len(result.Skipped)))

	return result, nil
}

func (p *Publisher) publishPhoto(ctx context.Context, photo models.PhotoAsset) (models.Artifact, error) {
	localPath, filename, ext := photo.Path, photo.Filename, photo.Ext

	if imageconv.NeedsNormalize(filename) {
		converted, err := p.normalizer.Normalize(localPath)
		if err != nil {
			return models.Artifact{}, err
		}
		localPath = converted
		filename = filepath.Base(converted)
		ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(converted), "."))
		p.logger.Debug("Converted photo", zap.String("from", photo.Filename), zap.String("to", filename))
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return models.Artifact{}, fmt.Errorf("failed to read photo: %w", err)
	}

	imageKey := storage.ImageKey(filename)
	if err := p.storage.Put(ctx, p.cfg.ImagesBucket, imageKey, bytes.NewReader(data), storage.ImageContentType(ext)); err != nil {
		return models.Artifact{}, err
	}

	imageURL, err := p.storage.SignedURL(ctx, p.cfg.ImagesBucket, imageKey, p.cfg.SignedURLTTL)
	if err != nil {
		return models.Artifact{}, err
	}

	page, err := render.Bytes(ctx, render.Profile(p.cfg.ClubName, photo.DisplayName, imageURL))
	if err != nil {
		return models.Artifact{}, err
	}
	if err := p.storage.Put(ctx, p.cfg.PagesBucket, storage.PageKey(photo.BaseName), bytes.NewReader(page), storage.ContentTypeHTML); err != nil {
		return models.Artifact{}, err
	}

	pageURL := PageURL(p.cfg.CDNBaseURL, photo.BaseName)
	qrPath := QRPath(p.cfg.OutputDir, photo.BaseName)
	qrGenerated := false
	if file.Exists(qrPath) {
		p.logger.Info("QR code already exists, skipping generation", zap.String("name", photo.BaseName))
	} else {
		if err := p.qr.WriteFile(pageURL, qrPath); err != nil {
			return models.Artifact{}, err
		}
		qrGenerated = true
	}

	p.logger.Info("Published member page",
		zap.String("name", photo.DisplayName),
		zap.String("url", pageURL),
		zap.Bool("qr_generated", qrGenerated))

	return models.Artifact{
		BaseName:    photo.BaseName,
		DisplayName: photo.DisplayName,
		ImageKey:    imageKey,
		PageURL:     pageURL,
		QRGenerated: qrGenerated,
	}, nil
}

// BuildIndex renders the listing of pages, in the given order, and uploads it to the pages
// bucket, always overwriting.
func (p *Publisher) BuildIndex(ctx context.Context, pages []models.PublishedPage) error {
	html, err := render.Bytes(ctx, render.Index(p.cfg.ClubName, pages))
	if err != nil {
		return err
	}
	if err := p.storage.Put(ctx, p.cfg.PagesBucket, storage.IndexKey, bytes.NewReader(html), storage.ContentTypeHTML); err != nil {
		return fmt.Errorf("failed to upload index: %w", err)
	}
	p.logger.Info("Uploaded index", zap.Int("members", len(pages)))
	return nil
}
