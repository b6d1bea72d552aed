package help

import "strings"

// Category groups commands in help output.
type Category string

const (
	CategoryDocument Category = "document"
	CategoryView     Category = "view"
	CategoryGeneral  Category = "general"
)

// CategoryOrder is the order categories are rendered in.
var CategoryOrder = []Category{CategoryDocument, CategoryView, CategoryGeneral}

var categoryNames = map[Category]string{
	CategoryDocument: "Documents",
	CategoryView:     "View",
	CategoryGeneral:  "General",
}

// DisplayName returns the heading of the category.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// Example is a sample invocation.
type Example struct {
	Command     string
	Description string
}

// Command describes one shell command.
type Command struct {
	// Name includes the leading slash.
	Name        string
	Shortcut    string
	Category    Category
	Usage       string
	Description string
	Examples    []Example
}

// Commands is the catalogue of shell commands.
var Commands = []Command{
	{
		Name:        "/open",
		Category:    CategoryDocument,
		Usage:       "/open <file.pdf> [name]",
		Description: "Show a pdf file",
		Examples: []Example{
			{"/open report.pdf", "Show report.pdf"},
			{"/open q3.pdf Quarterly report", "Show q3.pdf under another name"},
		},
	},
	{
		Name:        "/table",
		Category:    CategoryDocument,
		Usage:       "/table <file.csv>",
		Description: "Bind a table; headers name roles",
		Examples: []Example{
			{"/table rows.csv", "Headers like pdfData;pdfFileName;tooltipData:measure"},
		},
	},
	{
		Name:        "/export",
		Category:    CategoryDocument,
		Usage:       "/export",
		Description: "Download the current document",
	},
	{
		Name:        "/save",
		Category:    CategoryDocument,
		Usage:       "/save <file.png> [display]",
		Description: "Save the rendered page",
		Examples: []Example{
			{"/save page.png display", "Save at the displayed size"},
		},
	},
	{
		Name:        "/next",
		Category:    CategoryView,
		Usage:       "/next",
		Description: "Go to the next page",
	},
	{
		Name:        "/prev",
		Category:    CategoryView,
		Usage:       "/prev",
		Description: "Go to the previous page",
	},
	{
		Name:        "/zoom",
		Category:    CategoryView,
		Usage:       "/zoom in|out|reset",
		Description: "Change zoom in 25% steps",
		Examples: []Example{
			{"/zoom in", "Zoom to 125%"},
		},
	},
	{
		Name:        "/resize",
		Category:    CategoryView,
		Usage:       "/resize <width> <height>",
		Description: "Resize the panel",
	},
	{
		Name:        "/state",
		Category:    CategoryView,
		Usage:       "/state",
		Description: "Show the view",
	},
	{
		Name:        "/settings",
		Category:    CategoryGeneral,
		Usage:       "/settings",
		Description: "Show the formatting settings",
	},
	{
		Name:        "/license",
		Category:    CategoryGeneral,
		Usage:       "/license",
		Description: "Show the license state",
	},
	{
		Name:        "/help",
		Shortcut:    "/h",
		Category:    CategoryGeneral,
		Usage:       "/help [command]",
		Description: "Show help",
	},
	{
		Name:        "/quit",
		Shortcut:    "/q",
		Category:    CategoryGeneral,
		Usage:       "/quit",
		Description: "Exit",
	},
}

// GetCommand looks a command up by name or shortcut, with or without the
// leading slash.
func GetCommand(name string) (Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	for _, c := range Commands {
		if c.Name == name || (c.Shortcut != "" && c.Shortcut == name) {
			return c, true
		}
	}
	return Command{}, false
}

// GetCommandsByCategory returns the commands of cat in catalogue order.
func GetCommandsByCategory(cat Category) []Command {
	var out []Command
	for _, c := range Commands {
		if c.Category == cat {
			out = append(out, c)
		}
	}
	return out
}
