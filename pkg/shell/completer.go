package shell

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
)

// commands is the list of shell commands without the / prefix.
var commands = []string{
	"open",
	"table",
	"next",
	"prev",
	"zoom",
	"resize",
	"export",
	"state",
	"settings",
	"license",
	"save",
	"help",
	"quit",
	"exit",
}

// argumentValues lists fixed arguments per command.
var argumentValues = map[string][]string{
	"zoom": {"in", "out", "reset"},
	"save": {"display"},
}

// fileCommands take a path as their first argument.
var fileCommands = map[string]string{
	"open":  ".pdf",
	"table": ".csv",
	"save":  ".png",
}

// Completer completes commands, their fixed arguments and file paths.
type Completer struct {
	// readDir is replaced in tests.
	readDir func(string) ([]os.DirEntry, error)
}

// NewCompleter creates a completer reading the real file system.
func NewCompleter() *Completer {
	return &Completer{readDir: os.ReadDir}
}

var _ readline.AutoCompleter = (*Completer)(nil)

// Do implements readline.AutoCompleter. It returns the suffixes completing
// the word under the cursor and the length of that word.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	if len(line) == 0 || pos <= 0 {
		return nil, 0
	}
	pos = min(pos, len(line))

	text := string(line[:pos])
	start := strings.LastIndexAny(text, " \t") + 1
	word := text[start:]

	fields := strings.Fields(text[:start])
	if len(fields) == 0 {
		if !strings.HasPrefix(word, "/") {
			return nil, 0
		}
		return completeFrom(commands, strings.TrimPrefix(word, "/"), len(word))
	}

	cmd := strings.TrimPrefix(fields[0], "/")
	argIndex := len(fields) - 1

	if ext, ok := fileCommands[cmd]; ok && argIndex == 0 {
		return c.completePath(word, ext)
	}
	if values, ok := argumentValues[cmd]; ok {
		return completeFrom(values, word, len(word))
	}
	return nil, 0
}

func completeFrom(candidates []string, prefix string, length int) ([][]rune, int) {
	var matches [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, prefix) {
			matches = append(matches, []rune(cand[len(prefix):]+" "))
		}
	}
	return matches, length
}

// completePath offers directories and files with ext below the typed
// directory.
func (c *Completer) completePath(word, ext string) ([][]rune, int) {
	dir, base := filepath.Split(word)
	readFrom := "."
	if dir != "" {
		readFrom = filepath.Clean(dir)
	}
	entries, err := c.readDir(readFrom)
	if err != nil {
		return nil, 0
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, base) || (strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".")) {
			continue
		}
		switch {
		case e.IsDir():
			names = append(names, name+string(filepath.Separator))
		case strings.EqualFold(filepath.Ext(name), ext):
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var matches [][]rune
	for _, name := range names {
		suffix := name[len(base):]
		if !strings.HasSuffix(name, string(filepath.Separator)) {
			suffix += " "
		}
		matches = append(matches, []rune(suffix))
	}
	return matches, len(base)
}
