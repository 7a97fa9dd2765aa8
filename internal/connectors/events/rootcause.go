package events

import (
	"sort"
	"strings"
)

type reasonCategory struct {
	name     string
	priority int
	reasons  []string
}

// Priority ranks how likely a category is to be the cause rather than a
// symptom; 0 means "ignore when anything else is known".
var reasonCategories = []reasonCategory{
	{"CT Line Issue", 10, []string{"CT Line Issue/Backup Drained", "CT Line Issue", "CT line outage", "CT Line Fluctuation"}},
	{"Power", 9, []string{
		"Power", "Power Issue", "MCB Trip", "Voltage Issue", "UPS Hung/Rebooted",
		"Battery Issue", "Short circuit", "Stabilizer Issue", "UPS Damage",
		"UPS Issue", "Backup issue", "Power Chord Loose", "UPS Replacement",
		"AVR Issue", "MCB Damage", "Power Chord Issue", "Rectifier Issue",
		"Circuit Breaker OFF", "Generator not Operated on time", "Sub-meter Issue",
	}},
	{"Fiber", 9, []string{
		"Fiber Breakage", "Fiber Burnt", "Fiber Issue", "Fiber Losses", "Patch cord issue",
		"Cable Issue", "Fiber Replacement", "RF Cable Issue", "Repalced Ethernet cable",
		"Link down", "Link Flap", "CRC Issue", "Core Damage", "Ethernet Cable loose",
		"Plug/Unplug Ethernet Cable", "Path Issue", "Losses", "Ethernet Cable Damage",
		"Fiber Maintenance", "ADDS fiber maintanence",
	}},
	{"Device", 8, []string{
		"Switch Issue", "POE device Damage", "Device Issue", "Port issue",
		"Device Replacement", "Card Issue", "chassis issue", "SFP Issue",
		"Wireless Device Damage", "Device Hang", "Switch Decommissioned",
		"MUX Issue", "OLP issue", "MPLS Issue", "ATS Issue",
	}},
	{"Temperature Issue", 8, []string{"HIgh Temperature", "Temperature Issue"}},
	{"Weather", 8, []string{"Manual Down/Weather", "Weather Unfavourable"}},
	{"Power Backup", 8, []string{"No Backup", "Full Solar POP"}},
	{"Provider Issue", 7, []string{"Techmind issue", "Broadlink issue"}},
	{"Traffic Issue", 6, []string{"Congestion", "Traffic Issue", "Traffic Drop", "TV issue", "DTI Traffic Drop", "Upstream issue"}},
	{"Logical Issue", 6, []string{"Shut/unshut Port", "Admin Issue", "Configuration Change", "Logical Issue", "management issue"}},
	{"Wireless", 6, []string{"Radio Rebooted/Soft", "Wireless Issue"}},
	{"Maintenance", 5, []string{"Working at POP", "Maintainance", "Intentional", "Manual Down", "POP Shift", "Link Upgrade", "Team Working"}},
	{"External", 3, []string{"Pole shifting", "Road Expansion", "NEA Working"}},
	{"Reboot", 1, []string{"Rebooted", "Manual Reboot", "Automatic Rebooted"}},
	{"Terminated", 0, []string{"Host Removed", "No need to follow up", "No Clients", "Link Decommissioned", "Cannot Optimize"}},
}

const (
	categoryUnknown = "Unknown"
	// highFrequencyEvents switches to category ranking.
	highFrequencyEvents = 100
	minOccurrences      = 2
)

var reasonIndex = func() map[string]reasonCategory {
	out := map[string]reasonCategory{}
	for _, c := range reasonCategories {
		for _, r := range c.reasons {
			key := strings.ToLower(r)
			if _, ok := out[key]; !ok {
				out[key] = c
			}
		}
	}
	return out
}()

type reasonCount struct {
	reason string
	count  int
}

// LikelyRootCause names the one or two reasons that best explain a host's
// outages. Reasons seen at least twice win over one-offs and "unknown" loses
// to anything else. Hosts with many outages are ranked by category priority so
// symptoms such as reboots give way to causes such as power or fiber.
func LikelyRootCause(reasons []string, totalDownEvents int) string {
	if len(reasons) == 0 {
		return "N/A"
	}
	counts := countReasons(reasons)
	if len(counts) == 0 {
		return "Symptom-only (e.g. Reboot)"
	}
	if totalDownEvents >= highFrequencyEvents {
		if out := rankByCategory(counts); out != "" {
			return out
		}
	}

	var significant []reasonCount
	for _, rc := range counts {
		if rc.count >= minOccurrences {
			significant = append(significant, rc)
		}
	}
	pool := significant
	if len(pool) == 0 {
		pool = counts
	}
	known := withoutUnknown(pool)
	switch {
	case len(known) > 0:
		pool = known
	case len(significant) == 0 && len(counts) == 1:
		pool = counts[:1]
	}
	return joinReasons(pool, 2)
}

// countReasons counts trimmed non-empty reasons, most common first, ties in
// first-seen order.
func countReasons(reasons []string) []reasonCount {
	idx := map[string]int{}
	var out []reasonCount
	for _, r := range reasons {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if i, ok := idx[r]; ok {
			out[i].count++
			continue
		}
		idx[r] = len(out)
		out = append(out, reasonCount{reason: r, count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	return out
}

func withoutUnknown(in []reasonCount) []reasonCount {
	var out []reasonCount
	for _, rc := range in {
		if !strings.Contains(strings.ToLower(rc.reason), "unknown") {
			out = append(out, rc)
		}
	}
	return out
}

func joinReasons(in []reasonCount, limit int) string {
	if len(in) > limit {
		in = in[:limit]
	}
	parts := make([]string, 0, len(in))
	for _, rc := range in {
		parts = append(parts, rc.reason)
	}
	return strings.Join(parts, ", ")
}

// categorize matches a reason exactly, else by substring in either direction
// keeping the highest priority hit.
func categorize(reason string) (string, int) {
	lower := strings.ToLower(reason)
	if c, ok := reasonIndex[lower]; ok {
		return c.name, c.priority
	}
	name, priority := categoryUnknown, 0
	for _, c := range reasonCategories {
		for _, r := range c.reasons {
			mapped := strings.ToLower(r)
			if (strings.Contains(lower, mapped) || strings.Contains(mapped, lower)) && c.priority > priority {
				name, priority = c.name, c.priority
			}
		}
	}
	return name, priority
}

type categoryTally struct {
	name     string
	priority int
	count    int
	top      reasonCount
}

func rankByCategory(counts []reasonCount) string {
	tallies := map[string]*categoryTally{}
	var order []string
	for _, rc := range counts {
		name, priority := categorize(rc.reason)
		if priority == 0 {
			continue
		}
		t, ok := tallies[name]
		if !ok {
			t = &categoryTally{name: name, priority: priority}
			tallies[name] = t
			order = append(order, name)
		}
		t.count += rc.count
		if rc.count > t.top.count {
			t.top = rc
		}
	}
	if len(order) == 0 {
		return ""
	}

	ranked := make([]*categoryTally, 0, len(order))
	maxPriority := 0
	for _, name := range order {
		t := tallies[name]
		ranked = append(ranked, t)
		if t.priority > maxPriority {
			maxPriority = t.priority
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].priority != ranked[j].priority {
			return ranked[i].priority > ranked[j].priority
		}
		return ranked[i].count > ranked[j].count
	})
	// Symptoms drop out once a real cause is present.
	if maxPriority > 3 {
		causes := ranked[:0]
		for _, t := range ranked {
			if t.priority > 3 {
				causes = append(causes, t)
			}
		}
		ranked = causes
	}
	picked := make([]reasonCount, 0, 2)
	for _, t := range ranked {
		picked = append(picked, t.top)
	}
	return joinReasons(picked, 2)
}
