package http

import (
	"html/template"
	nethttp "net/http"
	"strconv"
	"time"

	"go-net-uptime-dashboard/internal/format"
)

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"stamp":     stamp,
	"day":       func(t time.Time) string { return t.Format("2006-01-02") },
	"clock":     format.Clock,
	"pct":       func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) + "%" },
	"typeLabel": typeLabel,
}).Parse(pageTemplates))

func staticScriptHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(nethttp.StatusOK)
	_, _ = w.Write([]byte(dashboardJS))
}

func faviconHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	w.WriteHeader(nethttp.StatusNoContent)
}

const pageTemplates = `
{{define "head"}}<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}} | Network Uptime</title>
  <style>
    :root {
      --brand: #0e5d8f;
      --brand-2: #0971b2;
      --bg: #f7f7f7;
      --paper: #fff;
      --text: #333;
      --muted: #777;
      --line: #ddd;
      --head: #f0f0f0;
      --bad-bg: #f2dede;
      --bad-text: #a94442;
    }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      background: var(--bg);
      color: var(--text);
      font-family: "Open Sans", "Helvetica Neue", Helvetica, Arial, sans-serif;
      font-size: 14px;
    }
    a { color: #428bca; text-decoration: none; }
    a:hover { color: #2a6496; text-decoration: underline; }
    header {
      background: linear-gradient(to right, var(--brand) 0, var(--brand-2) 100%);
      box-shadow: 0 2px 5px rgba(0, 0, 0, 0.15);
    }
    header nav {
      max-width: 1680px;
      margin: 0 auto;
      padding: 0 15px;
      min-height: 60px;
      display: flex;
      align-items: center;
      gap: 18px;
    }
    header a { color: #fff; }
    .brand { font-size: 20px; font-weight: 300; margin-right: auto; }
    .container { max-width: 1680px; margin: 0 auto; padding: 18px 15px 32px; }
    h1 { font-size: 28px; font-weight: 300; margin: 0 0 12px; }
    h2 { font-size: 20px; font-weight: 400; margin: 20px 0 10px; border-bottom: 1px solid var(--line); padding-bottom: 6px; }
    h3 { margin: 0; font-size: 15px; font-weight: 600; }
    .filters { display: flex; flex-wrap: wrap; gap: 8px; margin-bottom: 14px; }
    .filters input, .filters button { padding: 6px 8px; font-size: 13px; }
    .notice { background: #fcf8e3; border: 1px solid #faebcc; color: #8a6d3b; padding: 8px 12px; margin-bottom: 14px; }
    .panel-grid { display: grid; gap: 14px; grid-template-columns: repeat(auto-fit, minmax(320px, 1fr)); margin-bottom: 14px; }
    .panel { border: 1px solid var(--line); background: var(--paper); margin-bottom: 14px; }
    .panel-heading { padding: 10px 12px; border-bottom: 1px solid var(--line); background: var(--head); }
    .panel-body { padding: 10px 12px 12px; min-height: 260px; position: relative; }
    .chart-error-block { color: var(--bad-text); background: var(--bad-bg); padding: 12px; border: 1px solid #ebccd1; }
    .stats { display: flex; gap: 24px; margin: 6px 0 14px; color: var(--muted); }
    .stats strong { color: var(--text); }
    table { width: 100%; border-collapse: collapse; background: var(--paper); }
    th, td { padding: 8px; border-top: 1px solid var(--line); text-align: left; font-size: 13px; vertical-align: top; }
    thead th { border-top: 0; border-bottom: 2px solid var(--line); color: #555; font-size: 11px; text-transform: uppercase; background: #fafafa; }
    tbody tr:nth-child(odd) td { background: #f9f9f9; }
    .hidden-row, [hidden] { display: none !important; }
    .live-duration { font-variant-numeric: tabular-nums; color: var(--bad-text); font-weight: 600; }
    .btn { border: 1px solid #c7d7e5; background: #f3f8fc; color: var(--brand); padding: 5px 10px; font-size: 12px; font-weight: 600; cursor: pointer; }
    .month-selector, .date-grid { display: flex; flex-wrap: wrap; gap: 6px; margin-bottom: 12px; }
    .month-box, .date-box { border: 1px solid var(--line); background: var(--paper); padding: 6px 10px; color: var(--text); }
    .month-box.selected, .date-box.selected { background: var(--brand); border-color: var(--brand); color: #fff; }
    .popup-overlay { display: none; position: fixed; inset: 0; background: rgba(0, 0, 0, 0.45); z-index: 20; }
    .popup { background: var(--paper); max-width: 520px; margin: 10vh auto; padding: 18px; position: relative; box-shadow: 0 8px 24px rgba(0, 0, 0, 0.25); }
    .popup-close { position: absolute; top: 8px; right: 10px; border: 0; background: none; font-size: 20px; cursor: pointer; }
    .popup dt { font-weight: 600; margin-top: 6px; }
    .popup dd { margin: 0; }
    .page-transition { opacity: 0; transition: opacity 0.4s ease; }
    .page-transition.fade-in { opacity: 1; }
    .page-transition.fade-out { opacity: 0; }
    #loading-spinner { position: fixed; inset: 0; display: flex; align-items: center; justify-content: center; z-index: 30; pointer-events: none; }
    .spinner { width: 36px; height: 36px; border: 4px solid #c7d7e5; border-top-color: var(--brand); border-radius: 50%; animation: spin 0.8s linear infinite; }
    @keyframes spin { to { transform: rotate(360deg); } }
  </style>
</head>
<body>
<div id="loading-spinner"><div class="spinner"></div></div>
<header>
  <nav>
    <a class="brand" href="/"><strong>Network</strong> Uptime</a>
    <a href="/">Dashboard</a>
    <a href="/monthview/">Monthly View</a>
  </nav>
</header>
<main class="container page-transition">
{{with .Notice}}<div class="notice">{{.}}</div>{{end}}
{{end}}

{{define "foot"}}
</main>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chartjs-plugin-datalabels@2.2.0/dist/chartjs-plugin-datalabels.min.js"></script>
<script src="/static/dashboard.js"></script>
</body>
</html>
{{end}}

{{define "chart"}}{{if .OK}}<canvas id="{{.ID}}" data-chart="{{.ConfigJSON}}"></canvas>{{else}}<canvas id="{{.ID}}"{{with .Error}} data-error="{{.}}"{{end}}></canvas>{{end}}{{end}}

{{define "eventPopup"}}
<div class="popup-overlay" id="event-{{.ID}}">
  <div class="popup">
    <button type="button" class="popup-close" data-popup-close="event-{{.ID}}">&times;</button>
    <h3>{{.Name}}</h3>
    <dl>
      <dt>Date</dt><dd>{{.Date}}</dd>
      <dt>Down since</dt><dd>{{.DownText}}</dd>
      {{with .UpText}}<dt>Up at</dt><dd>{{.}}</dd>{{end}}
      <dt>Type</dt><dd>{{.Type}}</dd>
      <dt>Region</dt><dd>{{.Region}}</dd>
      <dt>Category</dt><dd>{{.Category}}</dd>
      <dt>Reason</dt><dd>{{if .Reason}}{{.Reason}}{{else}}No Reason{{end}}</dd>
    </dl>
  </div>
</div>
{{end}}

{{define "eventTable"}}
<table>
  <thead><tr><th>Name</th><th>Date</th><th>Down Time</th><th>Up Time</th><th>Duration</th><th>Type</th><th>Reason</th><th></th></tr></thead>
  <tbody>
  {{range .}}
    <tr class="host-row{{if .Collapsed}} hidden-row{{end}}" data-month="{{.Month}}" data-day="{{.Day}}"{{if .Hidden}} hidden{{end}}>
      <td><a href="/host/{{.HostID}}/">{{.Name}}</a></td>
      <td>{{.Date}}</td>
      <td>{{.DownText}}</td>
      <td>{{.UpText}}</td>
      <td>{{if .DownAttr}}<span class="live-duration" data-down-time="{{.DownAttr}}">{{.Duration}}</span>{{else}}{{.Duration}}{{end}}</td>
      <td>{{.Type}}</td>
      <td>{{.Reason}}</td>
      <td><button type="button" class="btn" data-popup-open="event-{{.ID}}">Details</button></td>
    </tr>
  {{end}}
  </tbody>
</table>
{{range .}}{{template "eventPopup" .}}{{end}}
{{end}}

{{define "dashboard"}}{{template "head" .}}
<h1>Network Uptime{{with .Filter.TypeLabel}}: {{.}}{{end}}
  <button type="button" class="btn" data-popup-open="uptimeInfoPopup">How is uptime calculated?</button>
</h1>
<form class="filters" method="get" action="/">
  <input type="text" name="name" placeholder="Search name, reason or date" value="{{.Filter.Name}}" />
  <input type="date" name="start_date" value="{{.Filter.StartDate}}" />
  <input type="date" name="end_date" value="{{.Filter.EndDate}}" />
  <input type="text" name="type" list="event-types" placeholder="Type" value="{{.Filter.Type}}" />
  <datalist id="event-types"><option value="switch"></option><option value="mpls"></option><option value="crc"></option></datalist>
  <button type="submit" class="btn">Filter</button>
  <a class="btn" href="/">Reset</a>
</form>

<div class="panel-grid">
  <div class="panel"><div class="panel-heading"><h3>Average Uptime</h3></div><div class="panel-body">{{template "chart" .Charts.Aggregate}}</div></div>
  <div class="panel"><div class="panel-heading"><h3>Uptime Split</h3></div><div class="panel-body">{{template "chart" .Charts.Pie}}</div></div>
  <div class="panel"><div class="panel-heading"><h3>Events per Day</h3></div><div class="panel-body">{{template "chart" .Charts.DailyTrend}}</div></div>
</div>

<h2>Ongoing Outages</h2>
{{if .Ongoing}}{{template "eventTable" .Ongoing}}{{else}}<p>No ongoing outages.</p>{{end}}
{{if .HasMore}}<button type="button" class="btn" id="showMoreBtn">Show more</button>{{end}}

{{with .Summary}}
<h2>Hosts</h2>
<div class="stats">
  <span>Events <strong>{{.TotalEvents}}</strong></span>
  <span>Switches <strong>{{.Switches}}</strong></span>
  <span>MPLS <strong>{{.MPLS}}</strong></span>
  <span>Window <strong>{{day .Start}}</strong> to <strong>{{day .End}}</strong></span>
</div>
<table>
  <thead><tr><th>Name</th><th>Type</th><th>Events</th><th>Downtime</th><th>Uptime</th><th>Likely Cause</th></tr></thead>
  <tbody>
  {{range .Hosts}}
    <tr><td><a href="/host/{{.HostID}}/">{{.Name}}</a></td><td>{{typeLabel .Type}}</td><td>{{.Count}}</td><td>{{clock .Downtime}}</td><td>{{pct .UptimePct}}</td><td>{{.Reason}}</td></tr>
  {{else}}
    <tr><td colspan="6">No switch or MPLS events.</td></tr>
  {{end}}
  </tbody>
</table>
{{if .Others}}
<h2>Other Events</h2>
<table>
  <thead><tr><th>Name</th><th>Date</th><th>Down Time</th><th>Up Time</th><th>Downtime</th><th>Type</th><th>Reason</th></tr></thead>
  <tbody>
  {{range .Others}}
    <tr><td><a href="/host/{{.HostID}}/">{{.Name}}</a></td><td>{{.Date}}</td><td>{{stamp .DownTime}}</td><td>{{stamp .UpTime}}</td><td>{{clock .Downtime}}</td><td>{{typeLabel .Type}}</td><td>{{.Reason}}</td></tr>
  {{end}}
  </tbody>
</table>
{{end}}
{{end}}

<div class="popup-overlay" id="uptimeInfoPopup">
  <div class="popup">
    <button type="button" class="popup-close" data-popup-close="uptimeInfoPopup">&times;</button>
    <h3>Uptime</h3>
    <p>Uptime is the share of the selected window a host was reachable. Without dates the window runs from the first day of the year to now.</p>
    <p>Ongoing outages count up to the current second.</p>
  </div>
</div>
{{template "foot" .}}{{end}}

{{define "host"}}{{template "head" .}}
<h1>{{.HostName}}</h1>
<p><a href="/">Back to dashboard</a></p>
<div id="perHostCharts" data-pk="{{.HostID}}">
{{if .Charts.Error}}
  <div class="chart-error-block">{{.Charts.Error}}</div>
{{else}}
  <div class="panel-grid">
    <div class="panel"><div class="panel-heading"><h3>Uptime vs Downtime</h3></div><div class="panel-body">{{template "chart" .Charts.Pie}}</div></div>
    <div class="panel"><div class="panel-heading"><h3>Daily Downtime</h3></div><div class="panel-body">{{template "chart" .Charts.Bar}}</div></div>
    <div class="panel"><div class="panel-heading"><h3>Outage Trend</h3></div><div class="panel-body">{{template "chart" .Charts.Trend}}</div></div>
  </div>
{{end}}
</div>
<h2>Events</h2>
{{if .Events}}{{template "eventTable" .Events}}{{else}}<p>No events for this host.</p>{{end}}
{{if .HasMore}}<button type="button" class="btn" id="showMoreBtn">Show more</button>{{end}}
{{template "foot" .}}{{end}}

{{define "monthview"}}{{template "head" .}}
<h1 id="table-title">{{.View.Rows.Title}}</h1>
<div class="month-selector">
{{range .View.MonthCells}}<a class="month-box{{if .Selected}} selected{{end}}" data-month-name="{{.Month}}" href="{{.Href}}">{{.Label}}</a>
{{end}}
</div>
<div class="month-dates"{{if not .View.Grid.Visible}} hidden{{end}}>
  <h2 id="month-title">{{.View.Grid.Month}}</h2>
  <div class="date-grid">
  {{range .View.Grid.Cells}}<a class="date-box{{if .Selected}} selected{{end}}" data-day="{{.Day}}" href="{{.Href}}">{{.Label}}</a>
  {{end}}
  </div>
</div>
{{template "eventTable" .Events}}
<p id="no-events-row"{{if not .View.Rows.ShowNoEvents}} hidden{{end}}>No events found for this selection.</p>
<script type="application/json" id="nepali-month-data">{{.CatalogJSON}}</script>
{{template "foot" .}}{{end}}

{{define "error"}}{{template "head" .}}
<h1>{{.Status}} {{.Title}}</h1>
<div class="chart-error-block">{{.Message}}</div>
<p><a href="/">Back to dashboard</a></p>
{{template "foot" .}}{{end}}
`

const dashboardJS = `(function () {
  "use strict";

  function pad(n) {
    return String(n).padStart(2, "0");
  }

  function elapsed(ms) {
    if (ms < 0) {
      return "00:00:00";
    }
    var total = Math.floor(ms / 1000);
    var days = Math.floor(total / 86400);
    var clock = pad(Math.floor((total % 86400) / 3600)) + ":" +
      pad(Math.floor((total % 3600) / 60)) + ":" + pad(total % 60);
    if (days === 0) {
      return clock;
    }
    return days + (days === 1 ? " day, " : " days, ") + clock;
  }

  function updateDurations() {
    document.querySelectorAll(".live-duration").forEach(function (el) {
      var raw = el.dataset.downTime;
      if (!raw) {
        el.textContent = "Unknown";
        return;
      }
      var downTime = new Date(raw);
      if (isNaN(downTime.getTime())) {
        el.textContent = "Invalid date";
        return;
      }
      el.textContent = elapsed(Date.now() - downTime.getTime());
    });
  }

  window.openPopup = function (id) {
    var el = document.getElementById(id);
    if (el) {
      el.style.display = "block";
    }
  };

  window.closePopup = function (id) {
    var el = document.getElementById(id);
    if (el) {
      el.style.display = "none";
    }
  };

  document.addEventListener("click", function (event) {
    var target = event.target;
    if (target.classList && target.classList.contains("popup-overlay")) {
      target.style.display = "none";
      return;
    }
    var opener = target.closest && target.closest("[data-popup-open]");
    if (opener) {
      window.openPopup(opener.getAttribute("data-popup-open"));
      return;
    }
    var closer = target.closest && target.closest("[data-popup-close]");
    if (closer) {
      window.closePopup(closer.getAttribute("data-popup-close"));
    }
  });

  function drawError(canvas, message) {
    var ctx = canvas.getContext("2d");
    ctx.font = "16px Arial";
    ctx.fillStyle = "red";
    ctx.textAlign = "center";
    ctx.fillText(message, canvas.width / 2, canvas.height / 2);
  }

  function withNotes(cfg) {
    return (cfg.data.datasets || []).some(function (ds) {
      return Array.isArray(ds.notes) && ds.notes.length > 0;
    });
  }

  function prepare(cfg) {
    var options = cfg.options || {};
    var plugins = options.plugins = options.plugins || {};
    var tooltip = plugins.tooltip = plugins.tooltip || {};
    var callbacks = tooltip.callbacks = tooltip.callbacks || {};

    if ("labelPrefix" in tooltip || "labelSuffix" in tooltip) {
      var prefix = tooltip.labelPrefix || "";
      var suffix = tooltip.labelSuffix || "";
      delete tooltip.labelPrefix;
      delete tooltip.labelSuffix;
      callbacks.label = function (context) {
        return prefix + context.raw + suffix;
      };
    }
    if (withNotes(cfg)) {
      var slot = (cfg.type === "pie" || cfg.type === "doughnut") ? "label" : "afterLabel";
      callbacks[slot] = function (context) {
        var notes = context.dataset.notes || [];
        return notes[context.dataIndex] || "";
      };
    }

    var labels = plugins.datalabels;
    if (labels) {
      if ("valueSuffix" in labels) {
        var valueSuffix = labels.valueSuffix;
        delete labels.valueSuffix;
        labels.formatter = function (value) {
          return value + valueSuffix;
        };
      }
      if (labels.valueAsShare) {
        delete labels.valueAsShare;
        labels.formatter = function (value, context) {
          var sum = context.chart.data.datasets[0].data.reduce(function (a, b) {
            return a + b;
          }, 0);
          return sum > 0 ? (value / sum * 100).toFixed(1) + "%" : "";
        };
      }
    }

    var extra = (cfg.plugins || []).map(function (name) {
      return window[name];
    }).filter(Boolean);
    return { type: cfg.type, data: cfg.data, options: options, plugins: extra };
  }

  function mountCharts() {
    document.querySelectorAll("canvas[data-error]").forEach(function (canvas) {
      drawError(canvas, canvas.dataset.error);
    });
    if (typeof window.Chart === "undefined") {
      return;
    }
    document.querySelectorAll("canvas[data-chart]").forEach(function (canvas) {
      try {
        new window.Chart(canvas, prepare(JSON.parse(canvas.dataset.chart)));
      } catch (err) {
        console.error("Error rendering chart " + canvas.id + ":", err);
        drawError(canvas, "Error: " + err.message);
      }
    });
  }

  function setupShowMore() {
    var button = document.getElementById("showMoreBtn");
    if (!button) {
      return;
    }
    button.addEventListener("click", function (event) {
      event.preventDefault();
      document.querySelectorAll(".hidden-row").forEach(function (row) {
        row.classList.remove("hidden-row");
      });
      button.style.display = "none";
    });
  }

  function setupTransitions() {
    var page = document.querySelector(".page-transition");
    var spinner = document.getElementById("loading-spinner");
    if (!page) {
      return;
    }
    requestAnimationFrame(function () {
      page.classList.add("fade-in");
      if (spinner) {
        spinner.style.display = "none";
      }
    });

    document.querySelectorAll("a[href]").forEach(function (link) {
      var href = link.getAttribute("href");
      if (href.indexOf("#") === 0 || href.indexOf("javascript:") === 0 || link.getAttribute("target") === "_blank") {
        return;
      }
      link.addEventListener("click", function (event) {
        if (event.metaKey || event.ctrlKey || event.shiftKey || event.button !== 0) {
          return;
        }
        event.preventDefault();
        page.classList.remove("fade-in");
        page.classList.add("fade-out");
        if (spinner) {
          spinner.style.display = "flex";
        }
        var next = link.href;
        setTimeout(function () {
          window.location.href = next;
        }, 400);
      });
    });
  }

  document.addEventListener("DOMContentLoaded", function () {
    mountCharts();
    setupShowMore();
    setupTransitions();
    updateDurations();
    setInterval(updateDurations, 1000);
  });
})();
`
