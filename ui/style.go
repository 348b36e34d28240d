package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"valheim-mod-manager/resolver"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Success renders text in the success color.
func Success(text string) string { return successStyle.Render(text) }

// Failure renders text in the error color.
func Failure(text string) string { return errorStyle.Render(text) }

// Warning renders text in the warning color.
func Warning(text string) string { return warnStyle.Render(text) }

// Heading renders bold section text.
func Heading(text string) string { return headingStyle.Render(text) }

// Subtle renders de-emphasized text.
func Subtle(text string) string { return subtleStyle.Render(text) }

// RenderTree renders a dependency tree with box-drawing connectors.
func RenderTree(node *resolver.TreeNode) string {
	if node == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n", headingStyle.Render(node.ID), subtleStyle.Render(node.Version)))
	renderChildren(&b, node.Children, "")
	return b.String()
}

func renderChildren(b *strings.Builder, children []*resolver.TreeNode, prefix string) {
	for i, child := range children {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(children)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}
		b.WriteString(fmt.Sprintf("%s%s%s %s\n", prefix, connector, child.ID, subtleStyle.Render(child.Version)))
		renderChildren(b, child.Children, childPrefix)
	}
}
