// Package switchconfig parses the per-switch topology file,
// configs/switch<ID>.cfg: a decimal bridge priority on line 1, followed by
// one port declaration per line. This is the mandatory, fixed format
// described in the specification; it is distinct from the optional
// ambient settings file (see pkg/settings).
package switchconfig

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kaelnet/vswitchd/pkg/port"
)

const (
	accessPrefix = "r-"
	trunkPrefix  = "rr-"
)

// Error reports a malformed config file, including the offending line
// number so an operator can find it quickly.
type Error struct {
	Path string
	Line int
	Err  error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("switchconfig: %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("switchconfig: %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Topology is the parsed result: the bridge priority and the ordered port
// table, ready to hand to bridge.New.
type Topology struct {
	OwnBID int64
	Ports  port.Table
}

// Path returns the conventional config path for a switch ID, matching the
// spec's fixed configs/switch<ID>.cfg layout.
func Path(dir string, switchID string) string {
	return filepath.Join(dir, fmt.Sprintf("switch%s.cfg", switchID))
}

// Load reads and parses the topology file at path.
func Load(path string) (Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return Topology{}, &Error{Path: path, Err: err}
	}
	defer f.Close()

	return parse(path, f)
}

func parse(path string, r io.Reader) (Topology, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return Topology{}, &Error{Path: path, Line: 1, Err: fmt.Errorf("missing bridge priority line")}
	}
	ownBID, err := strconv.ParseInt(strings.TrimSpace(scanner.Text()), 10, 64)
	if err != nil {
		return Topology{}, &Error{Path: path, Line: 1, Err: fmt.Errorf("unparseable bridge priority: %w", err)}
	}

	var ports port.Table
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		p, err := parsePortLine(line)
		if err != nil {
			return Topology{}, &Error{Path: path, Line: lineNo, Err: err}
		}
		ports = append(ports, p)
	}
	if err := scanner.Err(); err != nil {
		return Topology{}, &Error{Path: path, Err: fmt.Errorf("reading config: %w", err)}
	}

	return Topology{OwnBID: ownBID, Ports: ports}, nil
}

func parsePortLine(line string) (port.Port, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return port.Port{}, fmt.Errorf("empty port line")
	}
	name := fields[0]

	switch {
	case strings.HasPrefix(name, trunkPrefix):
		return port.New(name, port.Trunk, 0)

	case strings.HasPrefix(name, accessPrefix):
		if len(fields) < 2 {
			return port.Port{}, fmt.Errorf("access port %q missing VLAN", name)
		}
		vlan, err := strconv.Atoi(fields[1])
		if err != nil {
			return port.Port{}, fmt.Errorf("access port %q: unparseable VLAN %q: %w", name, fields[1], err)
		}
		return port.New(name, port.Access, vlan)

	default:
		return port.Port{}, fmt.Errorf("port %q has neither %q nor %q prefix", name, accessPrefix, trunkPrefix)
	}
}
