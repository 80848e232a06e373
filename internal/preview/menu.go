package preview

import (
	"fmt"
	"strings"

	"qniverse/internal/emit"
)

// menuItem is a single backend choice.
type menuItem struct {
	name    string
	backend string
}

// menuCategory groups the backends of one platform under a tab.
type menuCategory struct {
	platform emit.Platform
	items    []menuItem
}

// backendMenu lists every platform with its default simulator first.
var backendMenu = buildBackendMenu()

func buildBackendMenu() []menuCategory {
	var cats []menuCategory
	for _, p := range emit.Platforms() {
		cat := menuCategory{platform: p, items: []menuItem{{name: "default"}}}
		for _, b := range emit.Backends(p) {
			cat.items = append(cat.items, menuItem{name: b, backend: b})
		}
		cats = append(cats, cat)
	}
	return cats
}

// menuPosition returns the tab and row of a platform/backend pair.
func menuPosition(p emit.Platform, backend string) (cat, item int) {
	for i, c := range backendMenu {
		if c.platform != p {
			continue
		}
		for j, it := range c.items {
			if it.backend == backend {
				return i, j
			}
		}
		return i, 0
	}
	return 0, 0
}

// renderMenu renders the floating platform/backend picker.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Target"))
	sb.WriteString("\n")

	for i, cat := range backendMenu {
		name := " " + cat.platform.String() + " "
		if i == m.menuCat {
			sb.WriteString(activeStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(backendMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 34)))
	sb.WriteString("\n")

	cat := backendMenu[m.menuCat]
	for i, item := range cat.items {
		label := fmt.Sprintf("%-30s", item.name)
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ " + label))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(label))
		}
		if cat.platform == m.platform && item.backend == m.backend {
			sb.WriteString(activeStyle.Render(" ✓"))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Platform  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}
