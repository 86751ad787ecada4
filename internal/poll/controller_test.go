package poll

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/events"
	"internhunt-engine/internal/scrape"
	"internhunt-engine/internal/source"
	"internhunt-engine/internal/store"
)

// blockingRunner holds every pass until release is closed.
type blockingRunner struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
	err     error
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{entered: make(chan struct{}, 4), release: make(chan struct{})}
}

func (b *blockingRunner) Run(_ context.Context, _ domain.RunConfig, opts scrape.Options) (scrape.Summary, error) {
	b.calls.Add(1)
	b.entered <- struct{}{}
	<-b.release
	return scrape.Summary{PassID: "p1", Added: 2, DryRun: opts.DryRun}, b.err
}

type fakeStore struct {
	resets atomic.Int32
	err    error
}

func (f *fakeStore) Reset(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.resets.Add(1)
	return nil
}

func registry() *source.Registry {
	r := source.NewRegistry()
	r.Register("remotive")
	return r
}

func TestStartIsExclusive(t *testing.T) {
	run := newBlockingRunner()
	hub := events.NewHub()
	evs, unsub := hub.Subscribe()
	defer unsub()

	c := New(context.Background(), run, registry(), &fakeStore{}, hub, nil)

	out, err := c.Start(domain.RunConfig{}, scrape.Options{})
	require.NoError(t, err)
	assert.Equal(t, Started, out)
	<-run.entered

	out, err = c.Start(domain.RunConfig{}, scrape.Options{})
	require.NoError(t, err)
	assert.Equal(t, AlreadyRunning, out)
	assert.Equal(t, "running", c.Status().State)

	close(run.release)
	c.Wait()

	st := c.Status()
	assert.Equal(t, "idle", st.State)
	require.NotNil(t, st.Last)
	assert.Equal(t, 2, st.Last.Added)
	assert.Empty(t, st.LastError)
	assert.Equal(t, int32(1), run.calls.Load())

	assert.Equal(t, events.PassStarted, (<-evs).Type)
	assert.Equal(t, events.PassFinished, (<-evs).Type)

	out, err = c.Start(domain.RunConfig{}, scrape.Options{})
	require.NoError(t, err)
	assert.Equal(t, Started, out, "idle again after the pass")
	<-run.entered
	c.Wait()
}

func TestStartRejectsUnknownSource(t *testing.T) {
	run := newBlockingRunner()
	c := New(context.Background(), run, registry(), &fakeStore{}, nil, nil)

	_, err := c.Start(domain.RunConfig{Sources: []string{"monster"}}, scrape.Options{})
	require.ErrorIs(t, err, source.ErrUnknownSource)
	assert.False(t, c.Running())
	assert.Zero(t, run.calls.Load())
}

func TestStartRejectsUnknownRegionsAndTopics(t *testing.T) {
	run := newBlockingRunner()
	c := New(context.Background(), run, registry(), &fakeStore{}, nil, nil)

	_, err := c.Start(domain.RunConfig{Regions: []string{"international"}}, scrape.Options{})
	require.ErrorIs(t, err, domain.ErrInvalidRunConfig)

	_, err = c.Start(domain.RunConfig{Topics: []string{"computer vision"}}, scrape.Options{})
	require.ErrorIs(t, err, domain.ErrInvalidRunConfig)

	assert.False(t, c.Running())
	assert.Zero(t, run.calls.Load())
}

func TestResetLosingRaceToPassReportsInProgress(t *testing.T) {
	st := &fakeStore{err: store.ErrPassInProgress}
	c := New(context.Background(), newBlockingRunner(), nil, st, nil, nil)
	assert.ErrorIs(t, c.Reset(context.Background()), ErrRunInProgress)
}

func TestStatusRecordsError(t *testing.T) {
	run := newBlockingRunner()
	run.err = errors.New("disk full")
	close(run.release)

	c := New(context.Background(), run, nil, &fakeStore{}, nil, nil)
	_, err := c.Start(domain.RunConfig{}, scrape.Options{DryRun: true})
	require.NoError(t, err)
	c.Wait()

	st := c.Status()
	assert.Equal(t, "disk full", st.LastError)
	assert.True(t, st.Last.DryRun)
	assert.NotNil(t, st.LastDoneAt)
}

func TestResetRefusedWhileRunning(t *testing.T) {
	run := newBlockingRunner()
	st := &fakeStore{}
	logPath := filepath.Join(t.TempDir(), "scraper_run.log")
	require.NoError(t, os.WriteFile(logPath, []byte("line 1\nline 2\n"), 0o644))

	hub := events.NewHub()
	evs, unsub := hub.Subscribe()
	defer unsub()

	c := New(context.Background(), run, nil, st, hub, nil)
	c.LogPath = logPath

	_, err := c.Start(domain.RunConfig{}, scrape.Options{})
	require.NoError(t, err)
	<-run.entered

	require.ErrorIs(t, c.Reset(context.Background()), ErrRunInProgress)
	assert.Zero(t, st.resets.Load())

	close(run.release)
	c.Wait()
	<-evs
	<-evs

	require.NoError(t, c.Reset(context.Background()))
	assert.Equal(t, int32(1), st.resets.Load())
	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Empty(t, b)
	assert.Nil(t, c.Status().Last)

	select {
	case e := <-evs:
		assert.Equal(t, events.DataCleared, e.Type)
	case <-time.After(time.Second):
		t.Fatal("no data_cleared event")
	}
}

func TestResetWithoutLogFile(t *testing.T) {
	c := New(context.Background(), newBlockingRunner(), nil, &fakeStore{}, nil, nil)
	c.LogPath = filepath.Join(t.TempDir(), "missing.log")
	assert.NoError(t, c.Reset(context.Background()))
}

func TestSchedule(t *testing.T) {
	c := New(context.Background(), newBlockingRunner(), nil, &fakeStore{}, nil, nil)

	cr, err := c.Schedule("", func() domain.RunConfig { return domain.RunConfig{} })
	require.NoError(t, err)
	require.Len(t, cr.Entries(), 1)

	_, err = c.Schedule("every day at noon", func() domain.RunConfig { return domain.RunConfig{} })
	assert.Error(t, err)
}
