// Package facts gathers system information from target hosts.
//
// Every field is populated by its own probe, and a probe that fails on a
// given host degrades that field to its zero value instead of failing the
// collection. Fields with no machine-readable source fall back to parsing
// human-readable output.
package facts

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/opsforge/sshops/internal/connector"
)

// Facts is a normalized record of host metadata.
type Facts struct {
	Hostname     string
	OSType       string // lower-cased kernel name, e.g. "linux"
	OSRelease    string
	Architecture string

	UptimeSeconds int64

	Load1  float64
	Load5  float64
	Load15 float64

	// Memory sizes in bytes. Free prefers the kernel's "available"
	// metric over raw free when both are reported.
	MemoryTotal int64
	MemoryFree  int64
}

// Map flattens the record into output data keys.
func (f *Facts) Map() map[string]any {
	return map[string]any{
		"hostname":       f.Hostname,
		"os_type":        f.OSType,
		"os_release":     f.OSRelease,
		"architecture":   f.Architecture,
		"uptime_seconds": f.UptimeSeconds,
		"load_1":         f.Load1,
		"load_5":         f.Load5,
		"load_15":        f.Load15,
		"memory_total":   f.MemoryTotal,
		"memory_free":    f.MemoryFree,
	}
}

// Gather collects system facts from the target. It always returns a
// record; individual probes degrade to zero values on failure.
func Gather(ctx context.Context, conn connector.Connector) *Facts {
	f := &Facts{}

	if out, ok := probe(ctx, conn, "hostname"); ok {
		f.Hostname = out
	}
	if out, ok := probe(ctx, conn, "uname -s"); ok {
		f.OSType = strings.ToLower(out)
	}
	if out, ok := probe(ctx, conn, "uname -r"); ok {
		f.OSRelease = out
	}
	if out, ok := probe(ctx, conn, "uname -m"); ok {
		f.Architecture = out
	}

	f.UptimeSeconds = gatherUptime(ctx, conn)
	f.Load1, f.Load5, f.Load15 = gatherLoad(ctx, conn)
	f.MemoryTotal, f.MemoryFree = gatherMemory(ctx, conn)

	return f
}

// probe runs one introspection command and returns its trimmed stdout.
// Any dispatch failure or non-zero exit counts as a miss.
func probe(ctx context.Context, conn connector.Connector, cmd string) (string, bool) {
	result, err := conn.Execute(ctx, cmd)
	if err != nil || result.ExitCode != 0 {
		return "", false
	}
	out := strings.TrimSpace(result.Stdout)
	if out == "" {
		return "", false
	}
	return out, true
}

// gatherUptime reads /proc/uptime and falls back to the human-readable
// uptime(1) output on hosts without procfs.
func gatherUptime(ctx context.Context, conn connector.Connector) int64 {
	if out, ok := probe(ctx, conn, "cat /proc/uptime"); ok {
		fields := strings.Fields(out)
		if len(fields) > 0 {
			if secs, err := strconv.ParseFloat(fields[0], 64); err == nil {
				return int64(secs)
			}
		}
	}

	if out, ok := probe(ctx, conn, "uptime"); ok {
		return parseHumanUptime(out)
	}

	return 0
}

var (
	uptimeDays = regexp.MustCompile(`up\s+(\d+)\s+day`)
	uptimeHM   = regexp.MustCompile(`up(?:\s+\d+\s+days?,)?\s+(\d+):(\d+)`)
	uptimeMin  = regexp.MustCompile(`(\d+)\s+min`)
)

// parseHumanUptime extracts seconds from uptime(1) output such as
// "12:01  up 5 days, 3:42, 2 users, ...". Best effort: unmatched
// formats yield 0.
func parseHumanUptime(out string) int64 {
	var secs int64

	if m := uptimeDays.FindStringSubmatch(out); m != nil {
		days, _ := strconv.ParseInt(m[1], 10, 64)
		secs += days * 24 * 3600
	}

	if m := uptimeHM.FindStringSubmatch(out); m != nil {
		hours, _ := strconv.ParseInt(m[1], 10, 64)
		mins, _ := strconv.ParseInt(m[2], 10, 64)
		secs += hours*3600 + mins*60
	} else if m := uptimeMin.FindStringSubmatch(out); m != nil {
		mins, _ := strconv.ParseInt(m[1], 10, 64)
		secs += mins * 60
	}

	return secs
}

var loadAvg = regexp.MustCompile(`load averages?:\s+([\d.]+),?\s+([\d.]+),?\s+([\d.]+)`)

// gatherLoad reads /proc/loadavg and falls back to the load average
// section of uptime(1) output.
func gatherLoad(ctx context.Context, conn connector.Connector) (l1, l5, l15 float64) {
	if out, ok := probe(ctx, conn, "cat /proc/loadavg"); ok {
		fields := strings.Fields(out)
		if len(fields) >= 3 {
			a, err1 := strconv.ParseFloat(fields[0], 64)
			b, err2 := strconv.ParseFloat(fields[1], 64)
			c, err3 := strconv.ParseFloat(fields[2], 64)
			if err1 == nil && err2 == nil && err3 == nil {
				return a, b, c
			}
		}
	}

	if out, ok := probe(ctx, conn, "uptime"); ok {
		if m := loadAvg.FindStringSubmatch(out); m != nil {
			a, _ := strconv.ParseFloat(m[1], 64)
			b, _ := strconv.ParseFloat(m[2], 64)
			c, _ := strconv.ParseFloat(m[3], 64)
			return a, b, c
		}
	}

	return 0, 0, 0
}

// gatherMemory parses /proc/meminfo. Values are reported in kB and
// converted to bytes. MemAvailable is preferred over MemFree because it
// accounts for reclaimable caches.
func gatherMemory(ctx context.Context, conn connector.Connector) (total, free int64) {
	out, ok := probe(ctx, conn, "cat /proc/meminfo")
	if !ok {
		return 0, 0
	}

	var memFree int64
	for _, line := range strings.Split(out, "\n") {
		name, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		kb, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			continue
		}

		switch name {
		case "MemTotal":
			total = kb * 1024
		case "MemAvailable":
			free = kb * 1024
		case "MemFree":
			memFree = kb * 1024
		}
	}

	if free == 0 {
		free = memFree
	}

	return total, free
}
