package debugui

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/bumperfield/internal/ecs"
)

type fieldInfo struct {
	Name  string
	Index int
}

// fieldCache remembers the exported fields of component types.
type fieldCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]fieldInfo
}

func newFieldCache() *fieldCache {
	return &fieldCache{fields: make(map[reflect.Type][]fieldInfo)}
}

func (c *fieldCache) get(t reflect.Type) []fieldInfo {
	c.mu.RLock()
	cached, ok := c.fields[t]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	var fields []fieldInfo
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			f := t.Field(i)
			if f.IsExported() {
				fields = append(fields, fieldInfo{Name: f.Name, Index: i})
			}
		}
	}

	c.mu.Lock()
	c.fields[t] = fields
	c.mu.Unlock()
	return fields
}

// describe flattens v into "path: value" lines, the way the inspector
// lays it out.
func (c *fieldCache) describe(prefix string, v reflect.Value, out []string) []string {
	switch v.Kind() {
	case reflect.Struct:
		fields := c.get(v.Type())
		if len(fields) == 0 {
			return append(out, prefix+": {}")
		}
		for _, f := range fields {
			out = c.describe(joinPath(prefix, f.Name), v.Field(f.Index), out)
		}
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return append(out, prefix+": nil")
		}
		return append(out, fmt.Sprintf("%s: %s", prefix, v.Type()))
	case reflect.Slice, reflect.Map:
		return append(out, fmt.Sprintf("%s: [%d items]", prefix, v.Len()))
	case reflect.Float32, reflect.Float64:
		return append(out, fmt.Sprintf("%s: %.3f", prefix, v.Float()))
	case reflect.Func:
		return append(out, prefix+": func")
	default:
		if !v.CanInterface() {
			return append(out, prefix+": ?")
		}
		return append(out, fmt.Sprintf("%s: %v", prefix, v.Interface()))
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

var components = newFieldCache()

// inspectorWindow shows every component of the selected entity. The
// selection is held as an EntityRef so it follows archetype moves and
// goes blank when the entity is deleted, even if its slot is reused.
type inspectorWindow struct {
	storage  *ecs.Storage
	selected *ecs.EntityRef
	lines    []string
}

func (w *inspectorWindow) selectEntity(id ecs.EntityId) {
	w.selected = w.storage.CreateEntityRef(id)
}

func (w *inspectorWindow) current() (ecs.EntityId, bool) {
	return w.storage.ResolveEntityRef(w.selected)
}

func (w *inspectorWindow) isSelected(id ecs.EntityId) bool {
	current, ok := w.current()
	return ok && current == id
}

func (w *inspectorWindow) render() {
	imgui.SetNextWindowPosV(imgui.NewVec2(900, 350), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(360, 300), imgui.CondOnce)
	if !imgui.BeginV("Inspector", nil, 0) {
		imgui.End()
		return
	}

	id, ok := w.current()
	if !ok {
		imgui.Text("Select an entity in the World window")
		imgui.End()
		return
	}

	archetype := w.storage.GetArchetypeById(id.ArchetypeId())
	imgui.Text(fmt.Sprintf("Entity %d, archetype 0x%X", id.Index(), archetype.ID()))
	imgui.Separator()

	for _, t := range archetype.Types() {
		component := w.storage.GetComponent(id, t)
		if component == nil {
			continue
		}
		if imgui.TreeNodeStr(t.String()) {
			w.lines = components.describe("", reflect.ValueOf(component).Elem(), w.lines[:0])
			for _, line := range w.lines {
				imgui.Text(line)
			}
			imgui.TreePop()
		}
	}

	imgui.End()
}
