package diagram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alexiusacademia/gofea/internal/attrmap"
	"github.com/alexiusacademia/gofea/internal/mesh"
)

// DrawMeshSummary tabulates a mesh: node count, elements per type and
// elements per capsGroup
func DrawMeshSummary(m *mesh.Mesh, maps *attrmap.Set) string {
	lines := []string{fmt.Sprintf("Nodes: %d", len(m.Nodes))}
	for _, t := range mesh.ElementTypes {
		if n := m.QuickRef.Count[t]; n > 0 {
			lines = append(lines, fmt.Sprintf("%-16s %d", t.String()+":", n))
		}
	}

	perGroup := map[int]int{}
	for i := range m.Elements {
		if d := m.Elements[i].Fea(); d != nil {
			perGroup[d.AttrIndex]++
		}
	}
	if maps != nil && maps.Group.Len() > 0 {
		lines = append(lines, "", "capsGroup:")
		for idx, name := range maps.Group.Names() {
			lines = append(lines, fmt.Sprintf("  %-14s %d", name, perGroup[idx+1]))
		}
	}
	return DrawSummaryBox(fmt.Sprintf("MESH %s", strings.ToUpper(m.Name)), lines)
}

// DrawPlanView plots the nodes of a mesh projected on a plane as a
// character grid. Constrained nodes are drawn as '▲'.
func DrawPlanView(m *mesh.Mesh, plane Plane, constrained map[int]bool, width, height int) string {
	if len(m.Nodes) == 0 || width < 2 || height < 2 {
		return ""
	}
	minU, maxU, minV, maxV := bounds(m, plane)
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	scale := func(v, lo, hi float64, n int) int {
		if hi == lo {
			return n / 2
		}
		return int((v - lo) / (hi - lo) * float64(n-1))
	}
	for _, n := range m.Nodes {
		u, v := plane.Project(n.Pos)
		col := scale(u, minU, maxU, width)
		row := height - 1 - scale(v, minV, maxV, height)
		mark := '●'
		if constrained[n.ID] {
			mark = '▲'
		}
		if grid[row][col] != '▲' {
			grid[row][col] = mark
		}
	}

	var sb strings.Builder
	border := strings.Repeat("─", width)
	sb.WriteString(fmt.Sprintf("  %s view\n", plane))
	sb.WriteString(fmt.Sprintf("  ┌%s┐\n", border))
	for _, r := range grid {
		sb.WriteString(fmt.Sprintf("  │%s│\n", string(r)))
	}
	sb.WriteString(fmt.Sprintf("  └%s┘\n", border))
	sb.WriteString("  ● = node   ▲ = constrained node\n")
	return sb.String()
}

// DrawSummaryBox creates a summary box for results
func DrawSummaryBox(title string, lines []string) string {
	var sb strings.Builder

	width := utf8.RuneCountInString(title)
	for _, line := range lines {
		width = max(width, utf8.RuneCountInString(line))
	}

	pad := func(s string) string {
		return s + strings.Repeat(" ", width-utf8.RuneCountInString(s))
	}
	border := strings.Repeat("═", width+4)
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(title)))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(line)))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))

	return sb.String()
}
