package help

import (
	"fmt"
	"strings"
)

const (
	commandColumnWidth = 18
	indentCategory     = "  "
	indentCommand      = "    "
	indentExample      = "      "
)

// RenderFull renders every category followed by the tips section.
func (r *Renderer) RenderFull() {
	r.writeln("")
	r.writeln(Header(indentCategory + "PDF Viewer Commands"))
	r.writeln("")

	for _, cat := range CategoryOrder {
		r.renderCategory(cat)
	}

	r.writeln(indentCategory + StyleCategory("Tips"))
	r.writeln(indentCategory + Dim(BoxTeeLeft+strings.Repeat(BoxHorizontal, commandColumnWidth+20)))
	r.writeln(indentCommand + Dim(BoxVertical+" ") + Dim("Tab completes commands and file names"))
	r.writeln(indentCommand + Dim(BoxVertical+" ") + Dim("Ctrl+D exits, ↑↓ browse history"))
	r.writeln("")
}

// RenderCommand renders usage and examples of one command. It reports
// whether the command exists.
func (r *Renderer) RenderCommand(name string) bool {
	cmd, ok := GetCommand(name)
	if !ok {
		r.writeln(fmt.Sprintf(indentCategory+"Command '%s' not found. Use /help to see all commands.", name))
		return false
	}

	r.writeln("")
	r.writeln(indentCategory + commandLabel(cmd))
	r.writeln(indentCategory + Dim(cmd.Description))
	r.writeln("")
	r.writeln(indentCategory + Bold("Usage:") + " " + Argument(cmd.Usage))
	if len(cmd.Examples) > 0 {
		r.writeln("")
		r.writeln(indentCategory + Bold("Examples:"))
		for _, ex := range cmd.Examples {
			r.writeln(indentCommand + Argument(ex.Command) + Dim(" -> "+ex.Description))
		}
	}
	r.writeln("")
	return true
}

func (r *Renderer) renderCategory(cat Category) {
	commands := GetCommandsByCategory(cat)
	if len(commands) == 0 {
		return
	}

	r.writeln(indentCategory + StyleCategory(cat.DisplayName()))
	r.writeln(indentCategory + Dim(BoxTeeLeft+strings.Repeat(BoxHorizontal, commandColumnWidth+20)))
	for _, cmd := range commands {
		r.writeln(indentCommand + Dim(BoxVertical+" ") + PadRight(commandLabel(cmd), commandColumnWidth) + Dim(cmd.Description))
		if len(cmd.Examples) > 0 {
			r.writeln(indentExample + Dim(BoxVertical+"   e.g. ") + Argument(cmd.Examples[0].Command))
		}
	}
	r.writeln("")
}

func commandLabel(cmd Command) string {
	if cmd.Shortcut == "" {
		return StyleCommand(cmd.Name)
	}
	return StyleCommand(cmd.Name) + Dim(" ("+cmd.Shortcut+")")
}
