package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/slicewidgets/internal/database"
	"github.com/jask/slicewidgets/internal/follower"
	"github.com/jask/slicewidgets/internal/logging"
	"github.com/jask/slicewidgets/internal/provider"
	"github.com/jask/slicewidgets/internal/reactive"
	"github.com/jask/slicewidgets/internal/scene"
	"github.com/jask/slicewidgets/internal/store"
	"github.com/jask/slicewidgets/internal/surface"
	"github.com/jask/slicewidgets/internal/widget"
	"github.com/jask/slicewidgets/internal/widgets/crosshairs"
	"github.com/jask/slicewidgets/internal/widgets/ruler"
)

func newArchive(t *testing.T) *ArchiveService {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &ArchiveService{DB: db, Log: logging.Discard()}
}

func newProvider(t *testing.T) (*provider.Provider, *scene.View) {
	t.Helper()
	reg, err := widget.NewRegistry(ruler.Type(), crosshairs.Type())
	require.NoError(t, err)
	p, err := provider.New(provider.Options{
		Store:     store.New(reactive.NewGraph(), store.Options{}),
		Registry:  reg,
		Scheduler: &provider.Queue{},
		Logger:    logging.Discard(),
	})
	require.NoError(t, err)
	axial := scene.NewView("axial", surface.AxisZ, true)
	require.NoError(t, p.AddView(axial, surface.ViewTypeSlice))
	return p, axial
}

func TestSaveAndRestore(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	svc := newArchive(t)

	p, axial := newProvider(t)
	w, err := p.CreateWidget(ruler.TypeName, provider.CreateOptions{})
	require.NoError(t, err)
	axial.PointerTarget().Dispatch(surface.PointerEvent{Kind: surface.PointerEnter})
	r := w.Factory.(*ruler.Factory)
	r.Place(surface.Vec3{0, 0, 0})
	r.Place(surface.Vec3{6, 8, 0})
	_, err = p.CreateWidget(crosshairs.TypeName, provider.CreateOptions{})
	require.NoError(t, err)

	n, err := svc.SaveWidgets(ctx, p)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// Saving again replaces rather than appends.
	_, err = svc.SaveWidgets(ctx, p)
	require.NoError(t, err)
	recs, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, []string{"Ruler", "Crosshairs"}, []string{recs[0].Type, recs[1].Type})

	fresh, _ := newProvider(t)
	restored, err := svc.Restore(ctx, fresh)
	require.NoError(t, err)
	require.Len(t, restored, 2)
	got := restored[0].Factory.(*ruler.Factory)
	require.Equal(t, ruler.Complete, got.PlaceState())
	require.Equal(t, follower.LockAt(surface.AxisZ, 0), got.Lock())
	require.InDelta(t, 10.0, got.Length(), 1e-9)
}

func TestRestoreSkipsUnknownTypes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newArchive(t)
	require.NoError(t, svc.Save(ctx, []widget.Record{
		{Version: "1.0", Type: "Protractor", Data: map[string]any{}},
		{Version: "1.0", Type: "Crosshairs", Data: map[string]any{"position": []float64{1, 2, 3}}},
	}))

	p, _ := newProvider(t)
	restored, err := svc.Restore(ctx, p)
	require.ErrorIs(t, err, widget.ErrUnknownType)
	require.Len(t, restored, 1)
	pos, ok := restored[0].Factory.(*crosshairs.Factory).Position()
	require.True(t, ok)
	require.Equal(t, surface.Vec3{1, 2, 3}, pos)
}

func TestClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newArchive(t)
	require.NoError(t, svc.Save(ctx, []widget.Record{{Version: "1.0", Type: "Ruler", Data: map[string]any{}}}))
	n, err := svc.Clear(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	recs, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestNotConfigured(t *testing.T) {
	svc := &ArchiveService{}
	require.Error(t, svc.Save(context.Background(), nil))
}
