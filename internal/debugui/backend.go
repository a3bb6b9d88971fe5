package debugui

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
)

// Backend drives Dear ImGui from the ebiten game loop.
type Backend struct {
	backend *ebitenbackend.EbitenBackend
}

// NewBackend creates the ImGui context and the ebiten window. It must run
// before ebiten.RunGame.
func NewBackend(title string, width, height int) *Backend {
	b := ebitenbackend.NewEbitenBackend()
	b.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return &Backend{backend: b}
}

func (b *Backend) BeginFrame() {
	b.backend.BeginFrame()
}

func (b *Backend) EndFrame() {
	b.backend.EndFrame()
}

func (b *Backend) Draw(screen *ebiten.Image) {
	b.backend.Draw(screen)
}

func (b *Backend) Layout(width, height int) {
	b.backend.Layout(width, height)
}
