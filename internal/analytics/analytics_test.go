package analytics

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/go-logr/zapr"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type failingTracker struct{ calls int }

func (f *failingTracker) Capture(string) error {
	f.calls++
	return errors.New("sink unavailable")
}

type panickingTracker struct{}

func (panickingTracker) Capture(string) error { panic("boom") }

func TestFire_SwallowsFailures(t *testing.T) {
	f := &failingTracker{}
	assert.NotPanics(t, func() { Fire(f, CreatePRClicked) })
	assert.Equal(t, 1, f.calls)

	assert.NotPanics(t, func() { Fire(panickingTracker{}, PushToPRClicked) })
	assert.NotPanics(t, func() { Fire(nil, PushToBranchClicked) })
}

func TestRecorder_KeepsOrder(t *testing.T) {
	r := &Recorder{}
	Fire(r, PushToBranchClicked)
	Fire(r, CreatePRClicked)
	Fire(r, PushToPRClicked)

	assert.Equal(t, []string{PushToBranchClicked, CreatePRClicked, PushToPRClicked}, r.Events())
}

func TestRecorder_Concurrent(t *testing.T) {
	r := &Recorder{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Fire(r, PushToBranchClicked)
		}()
	}
	wg.Wait()
	assert.Len(t, r.Events(), 50)
}

func TestLogTracker_WritesEvent(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	tr := NewLogTracker(zapr.NewLogger(zap.New(core)))

	Fire(tr, CreatePRClicked)

	out := buf.String()
	assert.Contains(t, out, `"event":"create_pr_button_clicked"`)
	assert.Contains(t, out, tr.SessionID())
	assert.NotEmpty(t, tr.SessionID())
}
