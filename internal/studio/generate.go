package studio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/interera/interera/internal/gemini"
	"github.com/interera/interera/internal/imaging"
	"github.com/interera/interera/internal/metrics"
	"github.com/interera/interera/internal/server/events"
	"github.com/interera/interera/internal/sessions"
	"github.com/interera/interera/pkg/constants"
	"github.com/interera/interera/pkg/errors"
)

// Furnish generates a furnished rendering of an empty interior photo using
// the given style preset. An empty styleID selects the default style.
func (s *Studio) Furnish(ctx context.Context, sessionID string, image Upload, styleID string) (Result, error) {
	mime, err := validateUpload("image", image, "")
	if err != nil {
		return Result{}, err
	}

	prompt, err := s.prompts.Furnish(styleID)
	if err != nil {
		return Result{}, err
	}
	style := styleID
	if style == "" {
		style = s.prompts.DefaultStyle()
	}

	s.dump("img1", image.Data)

	return s.generate(ctx, sessionID, sessions.KindFurnish, style, prompt, []gemini.Media{
		{Data: image.Data, MIMEType: mime},
	})
}

// Inpaint generates a furniture design sheet for the object selected by a
// binary mask over a room photo. The mask's content type falls back to PNG
// when the client did not declare one.
func (s *Studio) Inpaint(ctx context.Context, sessionID string, image, mask Upload, detail string) (Result, error) {
	detail = strings.TrimSpace(detail)
	if len(detail) > constants.MaxOptionalDetailLength {
		return Result{}, errors.NewValidationError("optional_detail", len(detail),
			"detail note too long")
	}

	imageMime, err := validateUpload("image", image, "")
	if err != nil {
		return Result{}, err
	}
	maskMime, err := validateUpload("mask", mask, constants.MIMEPNG)
	if err != nil {
		return Result{}, err
	}

	s.dump("img1", image.Data)
	s.dump("mask", mask.Data)

	prompt := s.prompts.Inpaint(detail)

	return s.generate(ctx, sessionID, sessions.KindInpaint, "", prompt, []gemini.Media{
		{Data: image.Data, MIMEType: imageMime},
		{Data: mask.Data, MIMEType: maskMime},
	})
}

// validateUpload checks an upload's declared media type and content.
// The type check runs first so an unsupported declaration is reported even
// for an empty file.
func validateUpload(field string, u Upload, fallbackMime string) (string, error) {
	mime := u.ContentType
	if mime == "" {
		mime = fallbackMime
	}
	if !imaging.Allowed(mime) {
		return "", errors.NewMediaTypeError(mime, imaging.AllowedTypes())
	}
	if len(u.Data) == 0 {
		return "", errors.NewValidationError(field, nil, "empty file")
	}
	if len(u.Data) > constants.MaxUploadBytes {
		return "", errors.NewValidationError(field, len(u.Data), "file too large")
	}
	return mime, nil
}

// generate runs the model call and the bookkeeping shared by both workflows:
// events, metrics, PNG re-encode, and the history append.
func (s *Studio) generate(ctx context.Context, sessionID string, kind sessions.Kind, style, prompt string, media []gemini.Media) (Result, error) {
	short := events.ShortSession(sessionID)
	s.publish(events.GenerationStarted, events.GenerationData{
		Session: short,
		Kind:    string(kind),
		Style:   style,
	})

	start := time.Now()
	raw, _, err := s.generator.Generate(ctx, prompt, media...)
	upstream := time.Since(start)
	metrics.RecordUpstreamRequest("generate", upstream, err == nil)
	if err != nil {
		return Result{}, s.fail(kind, short, style, start, err)
	}

	encoded, err := imaging.EncodePNG(raw)
	if err != nil {
		err = errors.NewUpstreamError(constants.ProviderID, "decode",
			"model output is not a decodable image", err)
		return Result{}, s.fail(kind, short, style, start, err)
	}

	img := sessions.Image{
		Data:     encoded,
		MIMEType: imaging.DetectMediaType(encoded),
		Kind:     kind,
	}
	if err := s.store.Append(ctx, sessionID, img); err != nil {
		return Result{}, s.fail(kind, short, style, start, err)
	}

	duration := time.Since(start)
	metrics.RecordGeneration(string(kind), duration, true)

	count, err := s.store.Count(ctx, sessionID)
	if err != nil {
		count = 0
	}
	s.publish(events.GenerationCompleted, events.GenerationData{
		Session:    short,
		Kind:       string(kind),
		Style:      style,
		Images:     count,
		DurationMS: duration.Milliseconds(),
	})

	s.logger.Info().
		Str("session", short).
		Str("kind", string(kind)).
		Str("style", style).
		Str("model_id", s.generator.Model()).
		Int("bytes", len(encoded)).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("Generation completed")

	return Result{Image: encoded, MIMEType: img.MIMEType, HistoryCount: count}, nil
}

// fail records a failed generation and returns the error unchanged.
func (s *Studio) fail(kind sessions.Kind, short, style string, start time.Time, err error) error {
	duration := time.Since(start)
	metrics.RecordGeneration(string(kind), duration, false)
	s.publish(events.GenerationFailed, events.GenerationData{
		Session:    short,
		Kind:       string(kind),
		Style:      style,
		Error:      err.Error(),
		DurationMS: duration.Milliseconds(),
	})
	s.logger.Error().
		Err(err).
		Str("session", short).
		Str("kind", string(kind)).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("Generation failed")
	return err
}

// dump writes an accepted upload to the debug directory. Dump failures are
// logged and otherwise ignored; they never fail a generation.
func (s *Studio) dump(name string, data []byte) {
	if s.debugDir == "" {
		return
	}
	if err := os.MkdirAll(s.debugDir, constants.DirPermissions); err != nil {
		s.logger.Warn().Err(err).Str("dir", s.debugDir).Msg("Creating debug directory failed")
		return
	}
	path := filepath.Join(s.debugDir, name+".bin")
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Writing debug dump failed")
	}
}
