package charts

import (
	"strconv"

	"go-net-uptime-dashboard/internal/connectors/uptimeapi"
	"go-net-uptime-dashboard/internal/format"
)

const pluginDataLabels = "ChartDataLabels"

func boolPtr(v bool) *bool { return &v }

// AggregateBar is the average uptime per device class on the dashboard.
func AggregateBar(s *uptimeapi.Series) *Config {
	return &Config{
		Type: "bar",
		Data: Data{
			Labels: s.Labels,
			Datasets: []Dataset{{
				Label:           "Average Uptime",
				Data:            s.Data,
				BackgroundColor: []string{"rgba(75, 192, 192, 0.6)", "rgba(153, 102, 255, 0.6)"},
				BorderColor:     []string{"rgba(75, 192, 192, 1)", "rgba(153, 102, 255, 1)"},
				BorderWidth:     1,
			}},
		},
		Options: map[string]any{
			"scales": map[string]any{
				"y": map[string]any{
					"beginAtZero": false,
					"min":         80,
					"max":         100,
					"title": map[string]any{
						"display": true,
						"text":    "Average Uptime Percentage (%)",
					},
				},
			},
			"plugins": map[string]any{
				"legend": map[string]any{"display": false},
				"tooltip": map[string]any{
					"labelPrefix": "Average Uptime: ",
					"labelSuffix": "%",
				},
				"datalabels": map[string]any{
					"anchor":      "end",
					"align":       "top",
					"color":       "#000",
					"font":        map[string]any{"weight": "bold"},
					"valueSuffix": "%",
				},
			},
		},
		Plugins: []string{pluginDataLabels},
	}
}

// UptimePie is uptime against downtime in minutes for one host. Slices are
// labelled with their share of the total.
func UptimePie(s uptimeapi.Series) *Config {
	return &Config{
		Type: "pie",
		Data: Data{
			Labels: s.Labels,
			Datasets: []Dataset{{
				Label:           "Uptime vs Downtime (minutes)",
				Data:            s.Data,
				BackgroundColor: []string{"rgba(75, 192, 192, 0.8)", "rgba(255, 99, 132, 0.8)"},
				Notes:           shareNotes(s.Labels, s.Data),
			}},
		},
		Options: map[string]any{
			"responsive":          true,
			"maintainAspectRatio": false,
			"plugins": map[string]any{
				"datalabels": map[string]any{
					"color":        "#fff",
					"font":         map[string]any{"weight": "bold", "size": 14},
					"valueAsShare": true,
				},
				"tooltip": map[string]any{"enabled": true},
			},
		},
		Plugins: []string{pluginDataLabels},
	}
}

// DailyBar is minutes of downtime per day, with the day's reason in the
// tooltip.
func DailyBar(b uptimeapi.DailyBar) *Config {
	notes := make([]string, len(b.Data))
	for i := range notes {
		reason := "No Reason"
		if i < len(b.Reasons) && b.Reasons[i] != "" {
			reason = b.Reasons[i]
		}
		notes[i] = "Reason: " + reason
	}
	return &Config{
		Type: "bar",
		Data: Data{
			Labels: b.Labels,
			Datasets: []Dataset{{
				Label:           "Daily Downtime (minutes)",
				Data:            b.Data,
				BackgroundColor: "rgba(255, 159, 64, 0.8)",
				Notes:           notes,
			}},
		},
	}
}

// TrendLine is the number of outages per day for one host.
func TrendLine(s uptimeapi.Series) *Config {
	return &Config{
		Type: "line",
		Data: Data{
			Labels: s.Labels,
			Datasets: []Dataset{{
				Label:           "Daily Outage Count",
				Data:            s.Data,
				BorderColor:     "rgba(54, 162, 235, 1)",
				BackgroundColor: "rgba(54, 162, 235, 0.2)",
				Fill:            boolPtr(true),
				Tension:         0.1,
			}},
		},
	}
}

// DashboardPie shows the aggregate uptime split on the dashboard.
func DashboardPie(s *uptimeapi.Series) *Config {
	return &Config{
		Type: "pie",
		Data: Data{
			Labels: s.Labels,
			Datasets: []Dataset{{
				Data:            s.Data,
				BackgroundColor: []string{"#28a745", "#007bff"},
			}},
		},
	}
}

// DailyTrendLine is the number of events per day across all hosts.
func DailyTrendLine(s *uptimeapi.Series) *Config {
	return &Config{
		Type: "line",
		Data: Data{
			Labels: s.Labels,
			Datasets: []Dataset{{
				Label:       "Events per Day",
				Data:        s.Data,
				Fill:        boolPtr(false),
				BorderColor: "#ff6384",
				Tension:     0.3,
			}},
		},
	}
}

// shareNotes renders "label: value min (p%)" for each slice.
func shareNotes(labels []string, data []float64) []string {
	var total float64
	for _, v := range data {
		total += v
	}
	notes := make([]string, len(data))
	for i, v := range data {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		share := 0.0
		if total > 0 {
			share = v / total * 100
		}
		notes[i] = label + ": " + strconv.FormatFloat(v, 'f', -1, 64) + " min (" + format.Percent(share) + ")"
	}
	return notes
}
