package scip

import (
	"bufio"
	"bytes"
	"os/exec"
	"strings"

	"github.com/go-opt/milo/engine"
)

// displayMenus maps a category to the binary's display menu.
var displayMenus = map[engine.Category]string{
	engine.Branching:  "branching",
	engine.Conflict:   "conflict",
	engine.Display:    "displaycols",
	engine.Heuristic:  "heuristics",
	engine.Presolver:  "presolvers",
	engine.Propagator: "propagators",
	engine.Selector:   "nodeselectors",
	engine.Separator:  "separators",
}

// PluginNames asks the binary to print the display menu for c and
// parses the plugin names out of the table. Answers are cached; a
// failed query caches the empty answer. Before Init and after Release
// the engine answers empty.
func (e *Engine) PluginNames(c engine.Category) []string {
	if e.released || e.path == "" {
		return nil
	}
	if names, ok := e.plugins[c]; ok {
		return append([]string(nil), names...)
	}
	menu, ok := displayMenus[c]
	if !ok {
		return nil
	}
	out, err := exec.Command(e.path, "-c", "display "+menu+" quit").Output()
	var names []string
	if err != nil {
		e.log.Warn().Str("menu", menu).Err(err).Msg("plugin query failed")
	} else {
		names = parseMenu(out)
	}
	e.plugins[c] = names
	return append([]string(nil), names...)
}

// parseMenu extracts the name column of a display table: one name per
// line between the dashed separator and the first blank line.
func parseMenu(out []byte) []string {
	var names []string
	inTable := false
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if !inTable {
			inTable = len(fields) > 0 && strings.Trim(fields[0], "-") == ""
			continue
		}
		if len(fields) == 0 {
			break
		}
		names = append(names, fields[0])
	}
	return names
}
