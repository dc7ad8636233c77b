package handlers

import (
	"html/template"
	"time"
)

// humanTime renders an RFC3339 timestamp for the dashboard, "-" when unset
// and the raw string when unparseable.
func humanTime(ts string) string {
	if ts == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("02 Jan 2006 • 03:04:05 PM")
}

// Templates builds the dashboard template set for the gin HTML renderer.
func Templates() *template.Template {
	funcs := template.FuncMap{
		"human": humanTime,
		"add1":  func(i int) int { return i + 1 },
	}
	t := template.New("").Funcs(funcs)
	template.Must(t.New("index.html").Parse(indexTemplate))
	template.Must(t.New("device.html").Parse(deviceTemplate))
	template.Must(t.New("new_device.html").Parse(newDeviceTemplate))
	return t
}

const indexTemplate = `<!doctype html>
<html>
<head>
  <title>MedBox Dashboard</title>
  <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
</head>
<body class="bg-light">
<div class="container mt-4">
  <div class="d-flex justify-content-between align-items-center">
    <h2>MedBox Dashboard</h2>
    <a class="btn btn-primary" href="/devices/new">+ New Device</a>
  </div>
  <hr>
  {{if .Devices}}
  <table class="table table-striped table-bordered align-middle">
    <thead class="table-dark">
      <tr>
        <th>#</th>
        <th>Friendly Name</th>
        <th>Device ID</th>
        <th>Online</th>
        <th>Last Upload</th>
        <th>Last Changes</th>
        <th>Meds Count</th>
        <th>Pending Requests</th>
        <th>Sent Requests</th>
        <th>Actions</th>
      </tr>
    </thead>
    <tbody>
    {{range $i, $d := .Devices}}
      <tr>
        <td>{{add1 $i}}</td>
        <td>{{$d.FriendlyName}}</td>
        <td><code>{{$d.DeviceID}}</code></td>
        <td>{{if $d.Online}}<span class="badge bg-success">online</span>{{else}}<span class="badge bg-secondary">offline</span>{{end}}</td>
        <td>{{human $d.LastSeenUpload}}</td>
        <td>{{human $d.LastSeenChanges}}</td>
        <td>{{$d.MedsCount}}</td>
        <td>{{$d.PendingCount}}</td>
        <td>{{$d.SentCount}}</td>
        <td>
          <a class="btn btn-sm btn-outline-primary" href="/device/{{$d.DeviceID}}">View</a>
        </td>
      </tr>
    {{end}}
    </tbody>
  </table>
  {{else}}
    <div class="alert alert-info">
      No devices yet. Create one with "New Device" or let a MedBox upload for the first time.
    </div>
  {{end}}
</div>
</body>
</html>`

const deviceTemplate = `<!doctype html>
<html>
<head>
  <title>Device {{.Meta.FriendlyName}} - MedBox</title>
  <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
</head>
<body class="bg-light">
<div class="container mt-4">
  <div class="d-flex justify-content-between align-items-center mb-3">
    <a href="/" class="btn btn-secondary">&laquo; Back</a>

    <form method="POST" action="/device/{{.Meta.DeviceID}}/delete"
          onsubmit="return confirm('Delete this device and all history? This cannot be undone.');">
      <button class="btn btn-danger">Delete Device</button>
    </form>
  </div>

  <h3>Device: {{.Meta.FriendlyName}}
    {{if .Online}}<span class="badge bg-success">online</span>{{end}}
  </h3>
  <p>
    <b>Device ID:</b> <code>{{.Meta.DeviceID}}</code><br>
    <b>Created at:</b> {{human .Meta.CreatedAt}}<br>
    <b>Last Upload:</b> {{human .Meta.LastSeenUpload}}<br>
    <b>Last Changes Poll:</b> {{human .Meta.LastSeenChanges}}<br>
  </p>

  <hr>
  <h4>Current Medicines</h4>
  {{if .Snapshot}}
    <p><b>Snapshot time:</b> {{human .Snapshot.Timestamp}} | <b>Count:</b> {{.Snapshot.Count}}</p>
    {{if .Snapshot.Meds}}
      <table class="table table-sm table-striped table-bordered">
        <thead class="table-light">
          <tr>
            <th>ID</th><th>Name</th><th>Qty</th><th>Time (24h)</th><th>LED</th><th>Enabled</th>
          </tr>
        </thead>
        <tbody>
        {{range .Snapshot.Meds}}
          <tr>
            <td>{{.ID}}</td>
            <td>{{.Name}}</td>
            <td>{{.Qty}}</td>
            <td>{{printf "%02d:%02d" .Hour .Minute}}</td>
            <td>{{.Led}}</td>
            <td>{{if .Enabled}}Yes{{else}}No{{end}}</td>
          </tr>
        {{end}}
        </tbody>
      </table>
    {{else}}
      <div class="alert alert-warning">No medicines in last snapshot.</div>
    {{end}}
  {{else}}
    <div class="alert alert-info">No snapshot received yet from this device.</div>
  {{end}}

  <hr>
  <h4>Pending Requests (not yet delivered to the device)</h4>
  {{if .Pending}}
    <table class="table table-sm table-striped table-bordered">
      <thead class="table-light">
        <tr><th>#</th><th>Op</th><th>Data</th><th>Actions</th></tr>
      </thead>
      <tbody>
      {{range .Pending}}
        <tr>
          <td>{{add1 .Index}}</td>
          <td>{{.Op}}</td>
          <td><pre style="margin:0;font-size:0.8rem;">{{.JSON}}</pre></td>
          <td>
            <form method="POST"
                  action="/device/{{$.Meta.DeviceID}}/pending/{{.Index}}/delete"
                  onsubmit="return confirm('Delete this pending command?');">
              <button class="btn btn-sm btn-outline-danger">Delete</button>
            </form>
          </td>
        </tr>
      {{end}}
      </tbody>
    </table>
  {{else}}
    <div class="alert alert-success">No pending requests.</div>
  {{end}}

  <hr>
  <h4>Sent Requests (history)</h4>
  {{if .History}}
    <table class="table table-sm table-striped table-bordered">
      <thead class="table-light">
        <tr><th>#</th><th>Op</th><th>Status</th><th>Sent at</th><th>Data</th><th>Actions</th></tr>
      </thead>
      <tbody>
      {{range .History}}
        <tr>
          <td>{{add1 .Index}}</td>
          <td>{{.Op}}</td>
          <td>{{.Status}}</td>
          <td>{{human .SentAt}}</td>
          <td><pre style="margin:0;font-size:0.8rem;">{{.JSON}}</pre></td>
          <td>
            <form method="POST"
                  action="/device/{{$.Meta.DeviceID}}/history/{{.Index}}/delete"
                  onsubmit="return confirm('Delete this history record?');">
              <button class="btn btn-sm btn-outline-danger">Delete</button>
            </form>
          </td>
        </tr>
      {{end}}
      </tbody>
    </table>
  {{else}}
    <div class="alert alert-info">No sent requests yet.</div>
  {{end}}
</div>
</body>
</html>`

const newDeviceTemplate = `<!doctype html>
<html>
<head>
  <title>New Device - MedBox</title>
  <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
</head>
<body class="bg-light">
<div class="container mt-4">
  <a href="/" class="btn btn-secondary mb-3">&laquo; Back</a>
  <h3>Create New Device</h3>
  <div class="card">
    <div class="card-body">
      <form method="POST">
        <div class="mb-3">
          <label class="form-label">Device ID (must match the device firmware deviceId)</label>
          <input type="text" class="form-control" name="deviceId" required placeholder="MEDBOX_XXXXXXXXXXXX">
        </div>
        <div class="mb-3">
          <label class="form-label">Friendly Name</label>
          <input type="text" class="form-control" name="friendly_name" placeholder="Grandpa MedBox">
        </div>
        <button class="btn btn-primary">Create</button>
      </form>
    </div>
  </div>
</div>
</body>
</html>`
