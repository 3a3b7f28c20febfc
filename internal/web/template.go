package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/paddle-keyer/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	// ratio renders hundredths as a decimal, e.g. 300 -> 3.00.
	"ratio": func(r int) string {
		return fmt.Sprintf("%d.%02d", r/100, r%100)
	},
	"inc": func(i int) int { return i + 1 },
	"onOff": func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Paddle Keyer</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.warn { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Paddle Keyer</h1>

<h2>Keyer</h2>
<table>
<tr><th>Speed</th><td id="wpm">{{.Keyer.Settings.WPM}} wpm</td></tr>
<tr><th>Mode</th><td id="mode">{{.Keyer.Settings.Mode}}{{if eq (printf "%s" .Keyer.Settings.Mode) "ULTIMATIC"}} ({{.Keyer.Settings.UltimaticPriority}}){{end}}</td></tr>
<tr><th>Polarity</th><td>{{.Keyer.Settings.Polarity}}</td></tr>
<tr><th>Sidetone</th><td>{{.Keyer.Settings.SidetoneMode}} {{.Keyer.Settings.SidetoneHz}} Hz</td></tr>
<tr><th>Dah ratio</th><td>{{ratio .Keyer.Settings.DahRatio}}</td></tr>
<tr><th>Weighting</th><td>{{.Keyer.Settings.Weighting}}</td></tr>
<tr><th>Word space</th><td>{{.Keyer.Settings.WordSpace}} units</td></tr>
<tr><th>Autospace</th><td>{{onOff .Keyer.Settings.Autospace}}</td></tr>
<tr><th>Transmitter</th><td>TX{{.Keyer.Settings.TX}}{{if not .Keyer.TXEnabled}} <span class="warn">(practice)</span>{{end}}</td></tr>
<tr><th>Saved</th><td>{{if .Keyer.Dirty}}<span class="warn">pending</span>{{else}}yes{{end}}</td></tr>
</table>

<h2>Live</h2>
<table>
<tr><th>Key</th><td id="key" class="{{onOff .Keyer.KeyDown}}">{{if .Keyer.KeyDown}}DOWN{{else}}UP{{end}}</td></tr>
<tr><th>PTT</th><td id="ptt" class="{{onOff .Keyer.PTTActive}}">{{onOff .Keyer.PTTActive}}{{if .Keyer.ManualPTT}} (manual){{end}}</td></tr>
<tr><th>Last sent</th><td>{{.Keyer.LastOrigin}}</td></tr>
<tr><th>Faults</th><td{{if .Keyer.Faults.Total}} class="warn"{{end}}>paddle={{.Keyer.Faults.PaddleReads}} line={{.Keyer.Faults.LineWrites}} sidetone={{.Keyer.Faults.Sidetone}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counts</h2>
<table>
<tr><th>Commands</th><td>{{.Counts.Commands}}{{if .Counts.Rejected}} ({{.Counts.Rejected}} rejected){{end}}</td></tr>
<tr><th>Settings saved</th><td>{{.Counts.SettingsSaves}}</td></tr>
<tr><th>Characters sent</th><td>{{.Counts.CharsSent}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickUs}}us</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Board</th><td>{{if .Config.Board}}{{.Config.Board}}{{else}}built-in{{end}}</td></tr>
{{range $i, $tx := .Config.Transmitters}}<tr><th>TX{{inc $i}}</th><td>{{$tx}}</td></tr>
{{end}}<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
