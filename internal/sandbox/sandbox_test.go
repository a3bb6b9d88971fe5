package sandbox_test

import (
	"math/rand/v2"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/bumperfield/internal/audio"
	"github.com/plus3/bumperfield/internal/config"
	"github.com/plus3/bumperfield/internal/ecs"
	"github.com/plus3/bumperfield/internal/geom"
	"github.com/plus3/bumperfield/internal/input"
	"github.com/plus3/bumperfield/internal/physics"
	"github.com/plus3/bumperfield/internal/placement"
	"github.com/plus3/bumperfield/internal/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type playerView struct {
	*sandbox.Player
	*physics.Transform
	*physics.Velocity
	*physics.ExternalForce
}

func player(t *testing.T, storage *ecs.Storage) playerView {
	t.Helper()
	for p := range ecs.NewView[playerView](storage).Values() {
		return p
	}
	t.Fatal("no player")
	return playerView{}
}

func bumperPositions(storage *ecs.Storage) []geom.Vec2 {
	var out []geom.Vec2
	view := ecs.NewView[struct {
		*sandbox.Bumper
		*physics.Transform
	}](storage)
	for b := range view.Values() {
		out = append(out, b.Transform.Position)
	}
	return out
}

func bumperField(storage *ecs.Storage) map[ecs.EntityId]geom.Vec2 {
	out := make(map[ecs.EntityId]geom.Vec2)
	view := ecs.NewView[struct {
		*sandbox.Bumper
		*physics.Transform
	}](storage)
	for id, b := range view.Iter() {
		out[id] = b.Transform.Position
	}
	return out
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Seed = 1
	return cfg
}

func newSandbox(t *testing.T, cfg config.Config, src input.Source, player audio.Player) *sandbox.Sandbox {
	t.Helper()
	sb, err := sandbox.New(cfg, sandbox.Options{Input: src, Audio: player})
	require.NoError(t, err)
	return sb
}

func TestSetupSpawnsField(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	sandbox.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)
	cfg := testConfig()

	res, err := sandbox.Setup(storage, cfg, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	assert.Len(t, res.Points, 16)
	assert.GreaterOrEqual(t, res.Draws, 16)

	bumpers := bumperPositions(storage)
	require.Len(t, bumpers, 16)
	assert.True(t, placement.Separated(bumpers, []geom.Vec2{cfg.Player.Start(), cfg.Goal.Position()}, cfg.Bumpers.Spacing()))
	for _, b := range bumpers {
		assert.True(t, cfg.Bumpers.Area().Contains(b))
	}

	p := player(t, storage)
	assert.Equal(t, geom.Vec2{}, p.Transform.Position)

	goals := 0
	for range ecs.NewView[struct{ *sandbox.Goal }](storage).Iter() {
		goals++
	}
	assert.Equal(t, 1, goals)
}

func TestSetupFailsWithoutSpawning(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	sandbox.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	cfg := testConfig()
	cfg.Bumpers.SpacingFactor = 100
	cfg.Bumpers.MaxAttempts = 20

	_, err := sandbox.Setup(storage, cfg, rand.New(rand.NewPCG(1, 2)))
	require.ErrorIs(t, err, placement.ErrExhausted)
	assert.Equal(t, 0, storage.CollectStats().TotalEntityCount)
}

func TestNewFailsOnPlacement(t *testing.T) {
	cfg := testConfig()
	cfg.Bumpers.SpacingFactor = 100
	cfg.Bumpers.MaxAttempts = 20

	_, err := sandbox.New(cfg, sandbox.Options{})
	assert.ErrorIs(t, err, placement.ErrExhausted)
}

func TestSameSeedSameField(t *testing.T) {
	a := newSandbox(t, testConfig(), nil, nil)
	b := newSandbox(t, testConfig(), nil, nil)
	assert.Equal(t, bumperPositions(a.Storage), bumperPositions(b.Storage))
	assert.Equal(t, uint64(1), a.Hud().Seed)
	assert.Equal(t, 16, a.Hud().Bumpers)
}

func TestMovementAppliesScaledForce(t *testing.T) {
	src := &input.Scripted{}
	sb := newSandbox(t, testConfig(), src, nil)

	src.Hold(ebiten.KeyArrowRight, true)
	src.Hold(ebiten.KeyW, true)
	sb.Step(0.05)

	p := player(t, sb.Storage)
	assert.InDelta(t, 75, p.ExternalForce.Force.X, 1e-9)
	assert.InDelta(t, 75, p.ExternalForce.Force.Y, 1e-9)
	assert.Greater(t, p.Velocity.Linear.X, 0.0)
	assert.Greater(t, p.Transform.Position.X, 0.0)

	src.Hold(ebiten.KeyArrowRight, false)
	src.Hold(ebiten.KeyW, false)
	sb.Step(0.05)
	assert.Equal(t, geom.Vec2{}, p.ExternalForce.Force)
}

func TestPlayerCoastsToRest(t *testing.T) {
	src := &input.Scripted{}
	cfg := testConfig()
	cfg.Bumpers.Count = 0
	sb := newSandbox(t, cfg, src, nil)

	src.Hold(ebiten.KeyD, true)
	for range 60 {
		sb.Step(1.0 / 60)
	}
	src.Hold(ebiten.KeyD, false)
	moving := player(t, sb.Storage).Velocity.Linear.X
	require.Greater(t, moving, 0.0)

	for range 600 {
		sb.Step(1.0 / 60)
	}
	assert.Less(t, player(t, sb.Storage).Velocity.Linear.X, moving*0.05)
}

func TestReseedKey(t *testing.T) {
	src := &input.Scripted{}
	sb := newSandbox(t, testConfig(), src, nil)
	before := bumperPositions(sb.Storage)

	src.Tap(ebiten.KeyR)
	sb.Step(1.0 / 60)
	src.Advance()

	after := bumperPositions(sb.Storage)
	assert.Len(t, after, 16)
	assert.NotEqual(t, before, after)
	assert.NotEqual(t, uint64(1), sb.Hud().Seed)

	// Only one reseed per tap.
	sb.Step(1.0 / 60)
	assert.Equal(t, after, bumperPositions(sb.Storage))
}

func TestReseedIsDeterministic(t *testing.T) {
	a := newSandbox(t, testConfig(), nil, nil)
	b := newSandbox(t, testConfig(), nil, nil)
	require.NoError(t, a.Reseed(99))
	require.NoError(t, b.Reseed(99))
	assert.Equal(t, bumperPositions(a.Storage), bumperPositions(b.Storage))
	assert.Equal(t, uint64(99), a.Hud().Seed)
}

func TestReseedAvoidsPlayer(t *testing.T) {
	sb := newSandbox(t, testConfig(), nil, nil)
	p := player(t, sb.Storage)
	p.Transform.Position = geom.V(200, 100)

	for seed := range uint64(20) {
		require.NoError(t, sb.Reseed(seed+10))
		bumpers := bumperPositions(sb.Storage)
		require.Len(t, bumpers, 16)
		assert.True(t, placement.Separated(bumpers, []geom.Vec2{geom.V(200, 100), {}}, sb.Config().Bumpers.Spacing()))
	}
}

func TestRefieldFailureKeepsField(t *testing.T) {
	sb := newSandbox(t, testConfig(), nil, nil)
	before := bumperField(sb.Storage)
	require.Len(t, before, 16)

	cfg := sb.Config()
	cfg.Bumpers.MinX, cfg.Bumpers.MaxX = -1, 1
	cfg.Bumpers.MinY, cfg.Bumpers.MaxY = -1, 1
	cfg.Bumpers.SpacingFactor = 100
	cfg.Bumpers.MaxAttempts = 10

	_, err := sandbox.Refield(sb.Storage, cfg, rand.New(rand.NewPCG(5, 6)))
	require.ErrorIs(t, err, placement.ErrExhausted)
	assert.Equal(t, before, bumperField(sb.Storage))
	assert.Equal(t, uint64(1), sb.Hud().Seed)
	assert.Equal(t, 16, sb.Hud().Bumpers)
}

// cornerConfig places a single bumper in a small patch at x=400..420.
func cornerConfig() config.Config {
	cfg := testConfig()
	cfg.Bumpers.Count = 1
	cfg.Bumpers.MinX, cfg.Bumpers.MaxX = 400, 420
	cfg.Bumpers.MinY, cfg.Bumpers.MaxY = -10, 10
	cfg.Bumpers.MaxAttempts = 50
	return cfg
}

func TestFailedReseedKeepsGenerator(t *testing.T) {
	failed := newSandbox(t, cornerConfig(), nil, nil)
	clean := newSandbox(t, cornerConfig(), nil, nil)
	field := bumperField(failed.Storage)

	// With the player parked on the patch no bumper fits.
	p := player(t, failed.Storage)
	p.Transform.Position = geom.V(410, 0)
	require.ErrorIs(t, failed.Reseed(77), placement.ErrExhausted)
	assert.Equal(t, uint64(1), failed.Hud().Seed)
	assert.Equal(t, field, bumperField(failed.Storage))

	// The next reseed draws the same seed as a sandbox that never failed.
	p.Transform.Position = geom.Vec2{}
	failed.RequestReseed()
	failed.Step(1.0 / 60)
	clean.RequestReseed()
	clean.Step(1.0 / 60)
	assert.Equal(t, clean.Hud().Seed, failed.Hud().Seed)
	assert.Equal(t, bumperPositions(clean.Storage), bumperPositions(failed.Storage))
}

func TestBumperFlashesAfterHit(t *testing.T) {
	cfg := testConfig()
	cfg.Bumpers.Count = 0
	sb := newSandbox(t, cfg, nil, nil)

	sandbox.SpawnBumper(sb.Storage, geom.V(79, 0), cfg.Bumpers)
	player(t, sb.Storage).Velocity.Linear = geom.V(300, 0)
	sb.Step(1.0 / 60)

	flashing := ecs.NewView[struct {
		*sandbox.Bumper
		*sandbox.Flash
	}](sb.Storage)
	var lit []float64
	for f := range flashing.Values() {
		lit = append(lit, f.Flash.Remaining)
	}
	assert.Equal(t, []float64{sandbox.FlashDuration}, lit)
	require.Len(t, bumperPositions(sb.Storage), 1)

	for range 10 {
		sb.Step(1.0 / 60)
	}
	for range flashing.Values() {
		t.Fatal("bumper still flashing")
	}
	assert.Equal(t, []geom.Vec2{geom.V(79, 0)}, bumperPositions(sb.Storage))
	assert.Equal(t, 1, sb.Hud().Bumps)
}

func TestReseedCompactsAndKeepsRefs(t *testing.T) {
	sb := newSandbox(t, testConfig(), nil, nil)
	var playerId ecs.EntityId
	for id := range ecs.NewView[playerView](sb.Storage).Iter() {
		playerId = id
	}
	ref := sb.Storage.CreateEntityRef(playerId)

	var doomed ecs.EntityId
	for id := range bumperField(sb.Storage) {
		doomed = id
		break
	}
	bumperRef := sb.Storage.CreateEntityRef(doomed)
	sb.Storage.AddComponent(doomed, sandbox.Flash{Remaining: 1})

	require.NoError(t, sb.Reseed(42))
	assert.False(t, bumperRef.Valid())
	assert.Len(t, bumperField(sb.Storage), 16)

	id, ok := sb.Storage.ResolveEntityRef(ref)
	require.True(t, ok)
	assert.Same(t, player(t, sb.Storage).Transform, ecs.ReadComponent[physics.Transform](sb.Storage, id))
}

func TestRequestReseed(t *testing.T) {
	sb := newSandbox(t, testConfig(), nil, nil)
	before := bumperPositions(sb.Storage)
	sb.RequestReseed()
	sb.Step(1.0 / 60)
	assert.NotEqual(t, before, bumperPositions(sb.Storage))
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []ebiten.Key{ebiten.KeyQ, ebiten.KeyEscape} {
		src := &input.Scripted{}
		sb := newSandbox(t, testConfig(), src, nil)
		sb.Step(1.0 / 60)
		assert.False(t, sb.Quit())

		src.Hold(key, true)
		sb.Step(1.0 / 60)
		assert.True(t, sb.Quit(), key.String())
	}
}

func TestBumpPlaysSoundAndCounts(t *testing.T) {
	cfg := testConfig()
	cfg.Bumpers.Count = 0
	recorder := &audio.Recorder{}
	sb := newSandbox(t, cfg, nil, recorder)

	sandbox.SpawnBumper(sb.Storage, geom.V(79, 0), cfg.Bumpers)
	player(t, sb.Storage).Velocity.Linear = geom.V(300, 0)

	sb.Step(1.0 / 60)

	assert.Equal(t, 1, sb.Hud().Bumps)
	require.Equal(t, 1, recorder.Count())
	// Hit at 300 px/s with combined restitution 3 transfers 1200·m; full
	// volume is at 600·m, so the tone plays at the configured volume.
	assert.InDelta(t, cfg.Audio.Volume, recorder.Plays[0].Volume, 1e-9)
	assert.Less(t, player(t, sb.Storage).Velocity.Linear.X, 0.0)
}

func TestAudioDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Bumpers.Count = 0
	cfg.Audio.Enabled = false
	recorder := &audio.Recorder{}
	sb := newSandbox(t, cfg, nil, recorder)

	sandbox.SpawnBumper(sb.Storage, geom.V(79, 0), cfg.Bumpers)
	player(t, sb.Storage).Velocity.Linear = geom.V(300, 0)
	sb.Step(1.0 / 60)

	assert.Equal(t, 1, sb.Hud().Bumps)
	assert.Zero(t, recorder.Count())
}

func TestHudClock(t *testing.T) {
	sb := newSandbox(t, testConfig(), nil, nil)
	for range 30 {
		sb.Step(0.1)
	}
	assert.InDelta(t, 3.0, sb.Hud().Elapsed, 1e-9)
	assert.Contains(t, sb.Hud().String(), "seed: 1")
}

func TestProject(t *testing.T) {
	x, y := sandbox.Project(geom.Vec2{}, 1280, 720)
	assert.Equal(t, float32(640), x)
	assert.Equal(t, float32(360), y)

	x, y = sandbox.Project(geom.V(100, 50), 1280, 720)
	assert.Equal(t, float32(740), x)
	assert.Equal(t, float32(310), y)
}
