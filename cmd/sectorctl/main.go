// Copyright (C) 2024, sectorkit contributors
//
// sectorkit is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// sectorkit is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with sectorkit.  If not, see <https://www.gnu.org/licenses/>.

// sectorctl is the thin outer harness named in SPEC_FULL §11.1: load a
// serialized map, replay a line-delimited batch script of edit verbs
// against it, then re-serialize and optionally report. Generalized from
// VigilantBSP's cmdparser.go/vigilantbsp.go one-shot flag-parsed batch
// driver, swapping the teacher's hand-rolled character-by-character flag
// parser (born from having no dependency available, not from preference)
// for a real flags library, the same way rubenv-osmtopo's bin/* binaries
// parse their own flags.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"github.com/sectorkit/sectorkit"
)

type options struct {
	In      string `short:"i" long:"in" description:"input JSON map file (omitted: start from an empty map)"`
	Script  string `short:"s" long:"script" description:"batch edit script file, one verb per line"`
	Out     string `short:"o" long:"out" description:"output JSON map file"`
	GeoJSON string `long:"geojson" description:"optional GeoJSON boundary export path"`
	Check   bool   `long:"check" description:"run Validate() and report any invariant violations"`
	Stats   bool   `long:"stats" description:"print Stats() after replay"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	m, err := loadMap(opts.In)
	if err != nil {
		fatalf("sectorctl: %v", err)
	}

	if opts.Script != "" {
		if err := replayScript(m, opts.Script); err != nil {
			fatalf("sectorctl: %v", err)
		}
	}

	if opts.Check {
		if errs := m.Validate(); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, "invalid:", e)
			}
		} else {
			fmt.Println("check: ok")
		}
	}

	if opts.Stats {
		s := m.Stats()
		fmt.Printf("vertices=%d lines=%d sectors=%d things=%d max_depth=%d undo_depth=%d\n",
			s.VertexCount, s.LineCount, s.SectorCount, s.ThingCount, s.MaxSectorDepth, s.UndoDepth)
	}

	if opts.Out != "" {
		data, err := m.Serialize()
		if err != nil {
			fatalf("sectorctl: serialize: %v", err)
		}
		if err := os.WriteFile(opts.Out, data, 0644); err != nil {
			fatalf("sectorctl: write %s: %v", opts.Out, err)
		}
	}

	if opts.GeoJSON != "" {
		data, err := m.ExportGeoJSON()
		if err != nil {
			fatalf("sectorctl: geojson export: %v", err)
		}
		if err := os.WriteFile(opts.GeoJSON, data, 0644); err != nil {
			fatalf("sectorctl: write %s: %v", opts.GeoJSON, err)
		}
	}
}

func loadMap(path string) (*sectorkit.Map, error) {
	if path == "" {
		return sectorkit.New(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return sectorkit.Deserialize(data, nil)
}

// replayScript runs every non-blank, non-comment line of path as one edit
// verb against m. Comment lines start with '#'.
func replayScript(m *sectorkit.Map, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := replayLine(m, line); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}

func replayLine(m *sectorkit.Map, line string) error {
	fields := strings.Fields(line)
	verb := fields[0]
	args := fields[1:]

	switch verb {
	case "add_vertex":
		x, y, err := twoInts(args)
		if err != nil {
			return err
		}
		_, err = m.AddVertex(x, y, false)
		return err
	case "add_line":
		x0, y0, x1, y1, err := fourInts(args)
		if err != nil {
			return err
		}
		_, err = m.AddLine(x0, y0, x1, y1, false)
		return err
	case "remove_line":
		x0, y0, x1, y1, err := fourInts(args)
		if err != nil {
			return err
		}
		return m.RemoveLine(x0, y0, x1, y1, false)
	case "remove_vertex":
		x, y, err := twoInts(args)
		if err != nil {
			return err
		}
		return m.RemoveVertex(x, y, false)
	case "move_vertex":
		if len(args) != 4 {
			return fmt.Errorf("move_vertex wants 4 integers")
		}
		vals, err := parseInts(args)
		if err != nil {
			return err
		}
		return m.MoveVertex(vals[0], vals[1], vals[2], vals[3], false)
	case "set_sector_property":
		if len(args) != 3 {
			return fmt.Errorf("set_sector_property wants: id attribute value")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad sector id %q: %w", args[0], err)
		}
		s := m.SectorByID(id)
		if s == nil {
			return fmt.Errorf("no sector with id %d", id)
		}
		return m.SetSectorProperty(s, args[1], parseScalar(args[2]))
	case "undo":
		m.History.Undo()
		return nil
	case "redo":
		m.History.Redo()
		return nil
	default:
		return fmt.Errorf("unknown verb %q", verb)
	}
}

func parseScalar(s string) interface{} {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("bad integer %q: %w", a, err)
		}
		out[i] = n
	}
	return out, nil
}

func twoInts(args []string) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("want 2 integers, got %d", len(args))
	}
	vals, err := parseInts(args)
	if err != nil {
		return 0, 0, err
	}
	return vals[0], vals[1], nil
}

func fourInts(args []string) (int, int, int, int, error) {
	if len(args) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("want 4 integers, got %d", len(args))
	}
	vals, err := parseInts(args)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}

func fatalf(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
