package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/bumperfield/internal/ecs"
	"github.com/plus3/bumperfield/internal/physics"
	"github.com/plus3/bumperfield/internal/sandbox"
)

// Install adds the overlay windows to sb and registers ImguiSystem last in
// its update order. The registry sb was built from must have had
// RegisterComponents applied.
func Install(sb *sandbox.Sandbox) {
	storage := sb.Storage
	ecs.NewSingleton[ImguiInputState](storage)

	inspector := &inspectorWindow{storage: storage}
	perf := newPerformanceWindow(storage, sb.Update, 120)
	world := &worldWindow{storage: storage, inspector: inspector}

	storage.Spawn(ImguiItem{Render: func() { renderSandboxWindow(sb) }})
	storage.Spawn(ImguiItem{Render: perf.render})
	storage.Spawn(ImguiItem{Render: world.render})
	storage.Spawn(ImguiItem{Render: inspector.render})

	sb.Update.Register(&ImguiSystem{})
}

func renderSandboxWindow(sb *sandbox.Sandbox) {
	imgui.SetNextWindowPosV(imgui.NewVec2(10, 40), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(300, 260), imgui.CondOnce)
	if !imgui.BeginV("Sandbox", nil, 0) {
		imgui.End()
		return
	}

	hud := sb.Hud()
	imgui.Text(fmt.Sprintf("Seed: %d", hud.Seed))
	imgui.Text(fmt.Sprintf("Bumpers: %d (%d draws)", hud.Bumpers, hud.Draws))
	imgui.Text(fmt.Sprintf("Bumps: %d", hud.Bumps))
	imgui.Text(fmt.Sprintf("Time: %.1fs", hud.Elapsed))
	if imgui.Button("Reseed") {
		sb.RequestReseed()
	}

	var tuning *sandbox.Tuning
	if sb.Storage.ReadSingleton(&tuning) {
		imgui.Separator()
		editFloat("Move force", &tuning.MoveForce)
		editFloat("Spin", &tuning.Spin)
		editFloat("Volume", &tuning.Volume)
		tuning.Volume = min(max(tuning.Volume, 0), 1)
	}

	var cfg *physics.Config
	if sb.Storage.ReadSingleton(&cfg) {
		imgui.Separator()
		editFloat("Gravity X", &cfg.Gravity.X)
		editFloat("Gravity Y", &cfg.Gravity.Y)
	}

	imgui.End()
}

func editFloat(label string, v *float64) {
	f := float32(*v)
	if imgui.InputFloat(label, &f) {
		*v = float64(f)
	}
}

type performanceWindow struct {
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	history   []float32
	index     int
	last      time.Time
}

func newPerformanceWindow(storage *ecs.Storage, scheduler *ecs.Scheduler, historyFrames int) *performanceWindow {
	return &performanceWindow{
		storage:   storage,
		scheduler: scheduler,
		history:   make([]float32, historyFrames),
		last:      time.Now(),
	}
}

// sample records the wall time since the previous call in milliseconds.
func (w *performanceWindow) sample() float32 {
	now := time.Now()
	ms := float32(now.Sub(w.last).Seconds() * 1000)
	w.last = now
	w.history[w.index] = ms
	w.index = (w.index + 1) % len(w.history)

	var avg float32
	for _, v := range w.history {
		avg += v
	}
	return avg / float32(len(w.history))
}

func (w *performanceWindow) render() {
	avg := w.sample()

	imgui.SetNextWindowPosV(imgui.NewVec2(10, 310), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(420, 320), imgui.CondOnce)
	if !imgui.BeginV("Performance", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := w.storage.CollectStats()
	imgui.Text(fmt.Sprintf("Entities: %d  Archetypes: %d  Singletons: %d",
		stats.TotalEntityCount, stats.ArchetypeCount, stats.SingletonCount))
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}
	imgui.PlotLinesFloatPtr("##frametime", &w.history[0], int32(len(w.history)))

	if imgui.TreeNodeStr("Systems") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, s := range w.scheduler.GetStats().Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(s.Name)
				imgui.TableNextColumn()
				imgui.Text(s.LastDuration.String())
				imgui.TableNextColumn()
				imgui.Text(s.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(s.MaxDuration.String())
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singletons") {
		for _, name := range stats.SingletonTypes {
			imgui.BulletText(name)
		}
		imgui.TreePop()
	}

	imgui.End()
}

type worldWindow struct {
	storage   *ecs.Storage
	inspector *inspectorWindow
}

func (w *worldWindow) render() {
	imgui.SetNextWindowPosV(imgui.NewVec2(900, 40), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(360, 300), imgui.CondOnce)
	if !imgui.BeginV("World", nil, 0) {
		imgui.End()
		return
	}

	bodies := ecs.NewView[struct {
		Shape     *sandbox.Shape
		Transform *physics.Transform
		Velocity  *physics.Velocity `ecs:"optional"`
	}](w.storage)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
	if imgui.BeginTableV("BodyTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("X")
		imgui.TableSetupColumn("Y")
		imgui.TableSetupColumn("Speed")
		imgui.TableHeadersRow()

		for id, b := range bodies.Iter() {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			selected := w.inspector.isSelected(id)
			label := fmt.Sprintf("%s %d", layerName(b.Shape.Layer), id.Index())
			if imgui.SelectableBoolV(label, selected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				w.inspector.selectEntity(id)
			}
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%.1f", b.Transform.Position.X))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%.1f", b.Transform.Position.Y))
			imgui.TableNextColumn()
			if b.Velocity != nil {
				imgui.Text(fmt.Sprintf("%.1f", b.Velocity.Linear.Len()))
			}
		}
		imgui.EndTable()
	}

	imgui.End()
}

func layerName(l sandbox.Layer) string {
	switch l {
	case sandbox.LayerPlayer:
		return "player"
	case sandbox.LayerGoal:
		return "goal"
	default:
		return "bumper"
	}
}
