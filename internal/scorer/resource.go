package scorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/julienpequegnot/openqa/internal/format"
	"github.com/julienpequegnot/openqa/internal/taskstatus"
)

var ErrInvalidResource = errors.New("invalid resource")

// Resource is the metadata the scorer needs about one catalogued file.
type Resource struct {
	ID            string
	URL           string
	CacheURL      string
	CacheFilepath string
	PackageID     string
	IsOpen        bool
	Format        string
	Position      int
}

type Result struct {
	OpennessScore       int
	OpennessScoreReason string
	// Format is the display name of the detected format, empty if undetermined.
	Format string
}

// Sniffer detects a file's format from its content. A nil descriptor means the
// content was not recognised.
type Sniffer interface {
	SniffFormat(ctx context.Context, path string) (*format.Descriptor, error)
}

// CacheResolver maps a cache URL to a local file, or "" when there is none.
type CacheResolver interface {
	CachedFilepath(cacheURL string) string
}

// StatusSource reports the latest download task status of a resource; nil means
// no download has been attempted.
type StatusSource interface {
	LatestStatus(ctx context.Context, tc taskstatus.TaskContext, resourceID string) (*taskstatus.Record, error)
}

// Collaborators bundles the scorer's external dependencies. Any of them may be nil,
// in which case that evidence is treated as unavailable.
type Collaborators struct {
	Sniffer Sniffer
	Cache   CacheResolver
	Status  StatusSource
}

// ResourceScorer rates how open and machine-readable a resource is, from 0 to 3.
// It holds no mutable state and is safe for concurrent use.
type ResourceScorer struct {
	formats       *format.Registry
	sniffer       Sniffer
	cache         CacheResolver
	status        StatusSource
	statusTimeout time.Duration
}

func NewResourceScorer(formats *format.Registry, c Collaborators, statusTimeout time.Duration) *ResourceScorer {
	if formats == nil {
		formats = format.Default()
	}
	return &ResourceScorer{
		formats:       formats,
		sniffer:       c.Sniffer,
		cache:         c.Cache,
		status:        c.Status,
		statusTimeout: statusTimeout,
	}
}

// Score works out the openness score of a resource and the reasoning behind it.
// Missing evidence and failing collaborators lower the score rather than fail the
// call; only a resource without an ID or URL is an error.
func (s *ResourceScorer) Score(ctx context.Context, tc taskstatus.TaskContext, res Resource, logger *slog.Logger) (Result, error) {
	if res.ID == "" {
		return Result{}, fmt.Errorf("%w: missing id", ErrInvalidResource)
	}
	if res.URL == "" {
		return Result{}, fmt.Errorf("%w: resource %s has no url", ErrInvalidResource, res.ID)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("resource_id", res.ID)

	filepath := res.CacheFilepath
	if filepath == "" && res.CacheURL != "" && s.cache != nil {
		filepath = s.cache.CachedFilepath(res.CacheURL)
	}

	if res.CacheURL == "" && res.CacheFilepath == "" {
		if reason, ok := s.checkDownloaded(ctx, tc, res.ID, logger); !ok {
			logger.Debug("resource not downloaded", "reason", reason)
			return Result{OpennessScore: 0, OpennessScoreReason: reason}, nil
		}
	}

	var reasons []string
	f := s.formatFromContent(ctx, filepath, &reasons, logger)
	if f == nil {
		f = s.formatFromURL(res.URL, &reasons)
	}
	if f == nil {
		f = s.formatFromField(res.Format, &reasons)
	}

	weight, name := 1, ""
	if f != nil {
		weight, name = f.Weight, f.DisplayName
	}
	reason := strings.Join(reasons, " ")

	if !res.IsOpen {
		logger.Debug("license not open", "format", name)
		return Result{OpennessScore: 0, OpennessScoreReason: "License not open. " + reason, Format: name}, nil
	}

	logger.Debug("scored resource", "score", weight, "format", name)
	return Result{OpennessScore: weight, OpennessScoreReason: reason, Format: name}, nil
}

// checkDownloaded reports whether the status source has a successful download on
// record, and otherwise the reason it has not.
func (s *ResourceScorer) checkDownloaded(ctx context.Context, tc taskstatus.TaskContext, resourceID string, logger *slog.Logger) (string, bool) {
	const unconfirmed = "File could not be downloaded. Reason: download status could not be confirmed."

	if s.status == nil {
		return unconfirmed, false
	}

	if s.statusTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.statusTimeout)
		defer cancel()
	}

	rec, err := s.status.LatestStatus(ctx, tc, resourceID)
	if err != nil {
		logger.Warn("task status unavailable", "error", err)
		return unconfirmed, false
	}
	if rec == nil {
		return "File could not be downloaded. Reason: no download has been attempted.", false
	}
	if rec.Success {
		return "", true
	}
	return downloadFailure(rec), false
}

func downloadFailure(rec *taskstatus.Record) string {
	reason := trimSentence(rec.Reason)
	if reason == "" {
		reason = "URL request failed"
	}

	parts := []string{fmt.Sprintf("File could not be downloaded. Reason: %s.", reason)}
	if rec.Attempts > 0 && !rec.FirstAttemptedAt.IsZero() {
		parts = append(parts, fmt.Sprintf("Tried %d times since %s.", rec.Attempts, rec.FirstAttemptedAt.Format("2006-01-02")))
	}
	if details := trimSentence(rec.LastError); details != "" {
		parts = append(parts, fmt.Sprintf("Error details: %s.", details))
	}
	return strings.Join(parts, " ")
}

func trimSentence(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".")
}

func (s *ResourceScorer) formatFromContent(ctx context.Context, filepath string, reasons *[]string, logger *slog.Logger) *format.Descriptor {
	if filepath == "" || s.sniffer == nil {
		*reasons = append(*reasons, "The file content was not available to check its format.")
		return nil
	}

	f, err := s.sniffer.SniffFormat(ctx, filepath)
	if err != nil {
		logger.Warn("content sniffing failed", "path", filepath, "error", err)
		f = nil
	}
	if f == nil {
		*reasons = append(*reasons, "The format of the file was not recognised from its contents.")
		return nil
	}

	*reasons = append(*reasons, fmt.Sprintf("Content of file appeared to be format %q.", f.DisplayName))
	return f
}

func (s *ResourceScorer) formatFromURL(rawURL string, reasons *[]string) *format.Descriptor {
	variants := ExtensionVariants(rawURL)
	if len(variants) == 0 {
		*reasons = append(*reasons, "Could not determine a file extension in the URL.")
		return nil
	}

	for _, ext := range variants {
		if f, ok := s.formats.ByExtension(ext); ok {
			*reasons = append(*reasons, fmt.Sprintf("URL extension %q relates to format %q.", ext, f.DisplayName))
			return f
		}
	}

	*reasons = append(*reasons, fmt.Sprintf("URL extension %q is an unknown format.", variants[len(variants)-1]))
	return nil
}

func (s *ResourceScorer) formatFromField(value string, reasons *[]string) *format.Descriptor {
	if strings.TrimSpace(value) == "" {
		*reasons = append(*reasons, "Format field is blank.")
		return nil
	}

	f, ok := s.formats.ByFreeText(value)
	if !ok {
		*reasons = append(*reasons, fmt.Sprintf("Format field %q does not correspond to a known format.", value))
		return nil
	}

	*reasons = append(*reasons, fmt.Sprintf("Format field %q relates to format %q.", value, f.DisplayName))
	return f
}
