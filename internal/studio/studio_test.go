package studio

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/interera/interera/internal/gemini"
	"github.com/interera/interera/internal/prompts"
	"github.com/interera/interera/internal/server/events"
	"github.com/interera/interera/internal/sessions"
	"github.com/interera/interera/pkg/constants"
	"github.com/interera/interera/pkg/errors"
)

func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

// fakeGenerator returns canned output and records what it was asked for.
type fakeGenerator struct {
	image []byte
	mime  string
	err   error

	calls      int
	lastPrompt string
	lastMedia  []gemini.Media
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, media ...gemini.Media) ([]byte, string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastMedia = media
	if f.err != nil {
		return nil, "", f.err
	}
	return f.image, f.mime, nil
}

func (f *fakeGenerator) Model() string {
	return "gemini-test"
}

// recordingPublisher captures published events in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(eventType events.EventType, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events.Event{Type: eventType, Data: data})
}

func (r *recordingPublisher) recorded() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

func newTestStudio(t *testing.T, gen Generator, broker Publisher, debugDir string) (*Studio, sessions.Store) {
	t.Helper()

	lib, err := prompts.New()
	if err != nil {
		t.Fatalf("loading prompts: %v", err)
	}
	store := sessions.NewMemoryStore(0)
	s, err := New(Config{
		Generator: gen,
		Store:     store,
		Prompts:   lib,
		Broker:    broker,
		DebugDir:  debugDir,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, store
}

func TestNewValidation(t *testing.T) {
	lib, err := prompts.New()
	if err != nil {
		t.Fatalf("loading prompts: %v", err)
	}
	gen := &fakeGenerator{}
	store := sessions.NewMemoryStore(0)

	tests := []struct {
		name   string
		config Config
	}{
		{"missing generator", Config{Store: store, Prompts: lib}},
		{"missing store", Config{Generator: gen, Prompts: lib}},
		{"missing prompts", Config{Generator: gen, Store: store}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.config); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}

func TestFurnish(t *testing.T) {
	gen := &fakeGenerator{image: testPNG(t), mime: constants.MIMEPNG}
	s, store := newTestStudio(t, gen, nil, "")

	sessionID := sessions.NewID()
	result, err := s.Furnish(context.Background(), sessionID, Upload{
		Data:        testPNG(t),
		ContentType: constants.MIMEJPEG,
	}, "")
	if err != nil {
		t.Fatalf("Furnish() error = %v", err)
	}

	if len(result.Image) == 0 {
		t.Error("Furnish() returned empty image")
	}
	if result.MIMEType != constants.MIMEPNG {
		t.Errorf("MIMEType = %q, want %q", result.MIMEType, constants.MIMEPNG)
	}
	if result.HistoryCount != 1 {
		t.Errorf("HistoryCount = %d, want 1", result.HistoryCount)
	}

	if gen.calls != 1 {
		t.Fatalf("generator calls = %d, want 1", gen.calls)
	}
	if !strings.Contains(gen.lastPrompt, "Furnish and decorate this empty interior space") {
		t.Errorf("prompt missing furnish instructions: %q", gen.lastPrompt)
	}
	if len(gen.lastMedia) != 1 {
		t.Fatalf("media count = %d, want 1", len(gen.lastMedia))
	}
	if gen.lastMedia[0].MIMEType != constants.MIMEJPEG {
		t.Errorf("media mime = %q, want declared %q", gen.lastMedia[0].MIMEType, constants.MIMEJPEG)
	}

	images, err := store.History(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("stored images = %d, want 1", len(images))
	}
	if images[0].Kind != sessions.KindFurnish {
		t.Errorf("stored kind = %q, want %q", images[0].Kind, sessions.KindFurnish)
	}
}

func TestFurnishUnknownStyle(t *testing.T) {
	gen := &fakeGenerator{image: testPNG(t), mime: constants.MIMEPNG}
	s, _ := newTestStudio(t, gen, nil, "")

	_, err := s.Furnish(context.Background(), sessions.NewID(), Upload{
		Data:        testPNG(t),
		ContentType: constants.MIMEPNG,
	}, "brutalist")
	if !errors.IsNotFound(err) {
		t.Errorf("Furnish() error = %v, want not found", err)
	}
	if gen.calls != 0 {
		t.Errorf("generator calls = %d, want 0", gen.calls)
	}
}

func TestFurnishUnsupportedType(t *testing.T) {
	gen := &fakeGenerator{image: testPNG(t), mime: constants.MIMEPNG}
	s, _ := newTestStudio(t, gen, nil, "")

	_, err := s.Furnish(context.Background(), sessions.NewID(), Upload{
		Data:        []byte("GIF89a"),
		ContentType: "image/gif",
	}, "")
	if !errors.IsUnsupportedMedia(err) {
		t.Errorf("Furnish() error = %v, want unsupported media", err)
	}
	if gen.calls != 0 {
		t.Errorf("generator calls = %d, want 0", gen.calls)
	}
}

func TestFurnishEmptyFile(t *testing.T) {
	gen := &fakeGenerator{image: testPNG(t), mime: constants.MIMEPNG}
	s, _ := newTestStudio(t, gen, nil, "")

	_, err := s.Furnish(context.Background(), sessions.NewID(), Upload{
		ContentType: constants.MIMEPNG,
	}, "")
	if !errors.IsValidationError(err) {
		t.Errorf("Furnish() error = %v, want validation error", err)
	}
}

func TestFurnishUpstreamError(t *testing.T) {
	gen := &fakeGenerator{
		err: errors.NewUpstreamError("gemini", "generate", "model returned no image", nil),
	}
	broker := &recordingPublisher{}
	s, store := newTestStudio(t, gen, broker, "")

	sessionID := sessions.NewID()
	_, err := s.Furnish(context.Background(), sessionID, Upload{
		Data:        testPNG(t),
		ContentType: constants.MIMEPNG,
	}, "")
	if !errors.IsUpstream(err) {
		t.Fatalf("Furnish() error = %v, want upstream", err)
	}

	count, _ := store.Count(context.Background(), sessionID)
	if count != 0 {
		t.Errorf("history count after failure = %d, want 0", count)
	}

	recorded := broker.recorded()
	if len(recorded) != 2 {
		t.Fatalf("events = %d, want 2 (started, failed)", len(recorded))
	}
	if recorded[0].Type != events.GenerationStarted {
		t.Errorf("first event = %q, want %q", recorded[0].Type, events.GenerationStarted)
	}
	if recorded[1].Type != events.GenerationFailed {
		t.Errorf("second event = %q, want %q", recorded[1].Type, events.GenerationFailed)
	}
	data, ok := recorded[1].Data.(events.GenerationData)
	if !ok {
		t.Fatalf("failed event data type = %T", recorded[1].Data)
	}
	if data.Error == "" {
		t.Error("failed event missing error message")
	}
}

func TestFurnishUndecodableOutput(t *testing.T) {
	gen := &fakeGenerator{image: []byte("not an image"), mime: constants.MIMEPNG}
	s, store := newTestStudio(t, gen, nil, "")

	sessionID := sessions.NewID()
	_, err := s.Furnish(context.Background(), sessionID, Upload{
		Data:        testPNG(t),
		ContentType: constants.MIMEPNG,
	}, "")
	if !errors.IsUpstream(err) {
		t.Errorf("Furnish() error = %v, want upstream", err)
	}

	count, _ := store.Count(context.Background(), sessionID)
	if count != 0 {
		t.Errorf("history count after failure = %d, want 0", count)
	}
}

func TestInpaint(t *testing.T) {
	gen := &fakeGenerator{image: testPNG(t), mime: constants.MIMEPNG}
	s, _ := newTestStudio(t, gen, nil, "")

	result, err := s.Inpaint(context.Background(), sessions.NewID(),
		Upload{Data: testPNG(t), ContentType: constants.MIMEPNG},
		Upload{Data: testPNG(t)}, // no declared type, falls back to PNG
		"keep the walnut finish")
	if err != nil {
		t.Fatalf("Inpaint() error = %v", err)
	}

	if len(result.Image) == 0 {
		t.Error("Inpaint() returned empty image")
	}
	if len(gen.lastMedia) != 2 {
		t.Fatalf("media count = %d, want 2", len(gen.lastMedia))
	}
	if gen.lastMedia[1].MIMEType != constants.MIMEPNG {
		t.Errorf("mask mime = %q, want fallback %q", gen.lastMedia[1].MIMEType, constants.MIMEPNG)
	}
	if !strings.Contains(gen.lastPrompt, "User note: keep the walnut finish") {
		t.Errorf("prompt missing user note: %q", gen.lastPrompt)
	}
}

func TestInpaintDetailTooLong(t *testing.T) {
	gen := &fakeGenerator{image: testPNG(t), mime: constants.MIMEPNG}
	s, _ := newTestStudio(t, gen, nil, "")

	detail := strings.Repeat("x", constants.MaxOptionalDetailLength+1)
	_, err := s.Inpaint(context.Background(), sessions.NewID(),
		Upload{Data: testPNG(t), ContentType: constants.MIMEPNG},
		Upload{Data: testPNG(t)},
		detail)
	if !errors.IsValidationError(err) {
		t.Errorf("Inpaint() error = %v, want validation error", err)
	}
	if gen.calls != 0 {
		t.Errorf("generator calls = %d, want 0", gen.calls)
	}
}

func TestInpaintMaskUnsupported(t *testing.T) {
	gen := &fakeGenerator{image: testPNG(t), mime: constants.MIMEPNG}
	s, _ := newTestStudio(t, gen, nil, "")

	_, err := s.Inpaint(context.Background(), sessions.NewID(),
		Upload{Data: testPNG(t), ContentType: constants.MIMEPNG},
		Upload{Data: []byte("GIF89a"), ContentType: "image/gif"},
		"")
	if !errors.IsUnsupportedMedia(err) {
		t.Errorf("Inpaint() error = %v, want unsupported media", err)
	}
}

func TestHistoryLifecycle(t *testing.T) {
	gen := &fakeGenerator{image: testPNG(t), mime: constants.MIMEPNG}
	broker := &recordingPublisher{}
	s, _ := newTestStudio(t, gen, broker, "")

	ctx := context.Background()
	sessionID := sessions.NewID()

	if _, err := s.History(ctx, sessionID); !errors.IsNotFound(err) {
		t.Errorf("History() on empty session error = %v, want not found", err)
	}

	upload := Upload{Data: testPNG(t), ContentType: constants.MIMEPNG}
	for i := 0; i < 2; i++ {
		if _, err := s.Furnish(ctx, sessionID, upload, ""); err != nil {
			t.Fatalf("Furnish() #%d error = %v", i, err)
		}
	}

	images, err := s.History(ctx, sessionID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("History() count = %d, want 2", len(images))
	}

	img, err := s.HistoryImage(ctx, sessionID, 1)
	if err != nil {
		t.Fatalf("HistoryImage(1) error = %v", err)
	}
	if img.MIMEType != constants.MIMEPNG {
		t.Errorf("HistoryImage MIMEType = %q, want %q", img.MIMEType, constants.MIMEPNG)
	}
	if _, err := s.HistoryImage(ctx, sessionID, 5); !errors.IsNotFound(err) {
		t.Errorf("HistoryImage(5) error = %v, want not found", err)
	}

	if err := s.ClearHistory(ctx, sessionID); err != nil {
		t.Fatalf("ClearHistory() error = %v", err)
	}
	if _, err := s.History(ctx, sessionID); !errors.IsNotFound(err) {
		t.Errorf("History() after clear error = %v, want not found", err)
	}

	// Idempotent: clearing an already-empty session is fine and publishes
	// no second event.
	if err := s.ClearHistory(ctx, sessionID); err != nil {
		t.Fatalf("ClearHistory() on empty session error = %v", err)
	}

	var cleared int
	for _, ev := range broker.recorded() {
		if ev.Type == events.HistoryCleared {
			cleared++
			data, ok := ev.Data.(events.HistoryData)
			if !ok {
				t.Fatalf("cleared event data type = %T", ev.Data)
			}
			if data.Removed != 2 {
				t.Errorf("cleared event removed = %d, want 2", data.Removed)
			}
		}
	}
	if cleared != 1 {
		t.Errorf("history.cleared events = %d, want 1", cleared)
	}
}

func TestEventsPublished(t *testing.T) {
	gen := &fakeGenerator{image: testPNG(t), mime: constants.MIMEPNG}
	broker := &recordingPublisher{}
	s, _ := newTestStudio(t, gen, broker, "")

	sessionID := sessions.NewID()
	if _, err := s.Furnish(context.Background(), sessionID, Upload{
		Data:        testPNG(t),
		ContentType: constants.MIMEPNG,
	}, "scandinavian"); err != nil {
		t.Fatalf("Furnish() error = %v", err)
	}

	recorded := broker.recorded()
	if len(recorded) != 2 {
		t.Fatalf("events = %d, want 2 (started, completed)", len(recorded))
	}
	if recorded[0].Type != events.GenerationStarted {
		t.Errorf("first event = %q, want %q", recorded[0].Type, events.GenerationStarted)
	}
	if recorded[1].Type != events.GenerationCompleted {
		t.Errorf("second event = %q, want %q", recorded[1].Type, events.GenerationCompleted)
	}

	data, ok := recorded[1].Data.(events.GenerationData)
	if !ok {
		t.Fatalf("completed event data type = %T", recorded[1].Data)
	}
	if data.Session != sessionID[:8] {
		t.Errorf("event session = %q, want shortened %q", data.Session, sessionID[:8])
	}
	if data.Kind != "furnish" {
		t.Errorf("event kind = %q, want furnish", data.Kind)
	}
	if data.Style != "scandinavian" {
		t.Errorf("event style = %q, want scandinavian", data.Style)
	}
	if data.Images != 1 {
		t.Errorf("event images = %d, want 1", data.Images)
	}
}

func TestDebugDumps(t *testing.T) {
	debugDir := filepath.Join(t.TempDir(), "debug")
	gen := &fakeGenerator{image: testPNG(t), mime: constants.MIMEPNG}
	s, _ := newTestStudio(t, gen, nil, debugDir)

	roomImage := testPNG(t)
	if _, err := s.Inpaint(context.Background(), sessions.NewID(),
		Upload{Data: roomImage, ContentType: constants.MIMEPNG},
		Upload{Data: testPNG(t)},
		""); err != nil {
		t.Fatalf("Inpaint() error = %v", err)
	}

	dumped, err := os.ReadFile(filepath.Join(debugDir, "img1.bin"))
	if err != nil {
		t.Fatalf("reading img1.bin: %v", err)
	}
	if !bytes.Equal(dumped, roomImage) {
		t.Error("img1.bin content does not match uploaded image")
	}
	if _, err := os.Stat(filepath.Join(debugDir, "mask.bin")); err != nil {
		t.Errorf("mask.bin not written: %v", err)
	}
}

func TestStylesAndModel(t *testing.T) {
	gen := &fakeGenerator{image: testPNG(t), mime: constants.MIMEPNG}
	s, _ := newTestStudio(t, gen, nil, "")

	styles := s.Styles()
	if len(styles) == 0 {
		t.Fatal("Styles() returned nothing")
	}
	if s.DefaultStyle() == "" {
		t.Error("DefaultStyle() is empty")
	}

	found := false
	for _, style := range styles {
		if style.ID == s.DefaultStyle() {
			found = true
		}
	}
	if !found {
		t.Errorf("default style %q not in Styles()", s.DefaultStyle())
	}

	if s.Model() != "gemini-test" {
		t.Errorf("Model() = %q, want gemini-test", s.Model())
	}
}
