package web

import (
	"html/template"
	"io"
	"strings"
)

var funcMap = template.FuncMap{
	"bannerClass": func(level BannerLevel) string {
		return "banner banner-" + string(level)
	},
	"initial": func(s string) string {
		if s == "" {
			return "?"
		}
		return strings.ToUpper(string([]rune(s)[:1]))
	},
}

var (
	pageTemplate    = template.Must(template.New("page").Funcs(funcMap).Parse(tmplBase + tmplLogin + tmplDashboard))
	messageTemplate = template.Must(template.New("message").Parse(tmplMessage))
)

func renderPage(w io.Writer, page *Page) error {
	name := "login"
	if page.LoggedIn {
		name = "dashboard"
	}
	return pageTemplate.ExecuteTemplate(w, name, page)
}

// renderMessage fills a chart panel when there is nothing to draw.
func renderMessage(w io.Writer, message string) error {
	return messageTemplate.Execute(w, message)
}

const tmplBase = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Joe On The Go</title>
<style>
body { font-family: -apple-system, Segoe UI, Helvetica, Arial, sans-serif; margin: 0; background: #f6f8fa; color: #24292f; }
header { background: #0d1117; color: #f0f6fc; padding: 12px 24px; display: flex; justify-content: space-between; align-items: center; }
header h1 { font-size: 20px; margin: 0; }
main { display: flex; gap: 24px; padding: 24px; }
aside { width: 280px; flex-shrink: 0; }
section { flex-grow: 1; min-width: 0; }
.banner { padding: 10px 14px; border-radius: 6px; margin-bottom: 8px; }
.banner-success { background: #dafbe1; }
.banner-info { background: #ddf4ff; }
.banner-warning { background: #fff8c5; }
.banner-error { background: #ffebe9; }
.tiles { display: grid; grid-template-columns: repeat(4, 1fr); gap: 12px; margin: 16px 0; }
.tile { background: #fff; border: 1px solid #d0d7de; border-radius: 6px; padding: 12px; }
.tile .label { font-size: 12px; color: #57606a; }
.tile .value { font-size: 22px; font-weight: 600; }
.panel { background: #fff; border: 1px solid #d0d7de; border-radius: 6px; margin-bottom: 16px; }
.panel iframe { width: 100%; height: 460px; border: 0; }
label { display: block; margin: 12px 0 4px; font-size: 13px; }
input, select, button { width: 100%; box-sizing: border-box; padding: 6px; }
.avatar { display: inline-block; width: 28px; height: 28px; line-height: 28px; text-align: center; border-radius: 50%; background: #238636; margin-right: 8px; }
</style>
</head>
<body>
{{end}}

{{define "banners"}}{{range .Banners}}<div class="{{bannerClass .Level}}">{{.Message}}</div>
{{end}}{{end}}

{{define "foot"}}</body>
</html>
{{end}}
`

const tmplLogin = `
{{define "login"}}{{template "head" .}}
<header><h1>Joe On The Go</h1></header>
<main>
<section style="max-width: 420px; margin: 0 auto;">
{{template "banners" .}}
<form method="post" action="/login">
<label for="username">Enter your Username</label>
<input id="username" name="username" type="text" value="{{.Username}}" autocomplete="username">
<label for="password">Enter your Password</label>
<input id="password" name="password" type="password" autocomplete="current-password">
<p><button type="submit">Login</button></p>
</form>
</section>
</main>
{{template "foot" .}}{{end}}
`

const tmplDashboard = `
{{define "dashboard"}}{{template "head" .}}
<header>
<h1>Joe On The Go</h1>
<form method="post" action="/logout" style="display: flex; align-items: center;">
<span class="avatar">{{initial .Username}}</span><span style="margin-right: 12px;">{{.Username}}</span>
<button type="submit" style="width: auto;">Logout</button>
</form>
</header>
<main>
<aside>
<form method="get" action="/">
<label for="count">Number of Activities to Fetch: <output id="countValue">{{.ActivityCount}}</output></label>
<input id="count" name="count" type="range" min="{{.MinCount}}" max="{{.MaxCount}}" value="{{.ActivityCount}}"
	oninput="document.getElementById('countValue').value = this.value" onchange="this.form.submit()">
{{if .Activities}}
<label for="activity">Select an Activity</label>
<select id="activity" name="activity" onchange="this.form.submit()">
{{range .Activities}}<option value="{{.ID}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
{{end}}
<noscript><p><button type="submit">Apply</button></p></noscript>
</form>
</aside>
<section>
{{template "banners" .}}
{{if .Tiles}}
<h2>Activity Details</h2>
<div class="tiles">
{{range .Tiles}}<div class="tile"><div class="label">{{.Label}}</div><div class="value">{{.Value}}</div></div>
{{end}}</div>
{{end}}
{{range .Charts}}<div class="panel"><iframe title="{{.Title}}" src="{{.URL}}" loading="lazy"></iframe></div>
{{end}}
</section>
</main>
{{template "foot" .}}{{end}}
`

const tmplMessage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Joe On The Go</title></head>
<body style="font-family: sans-serif; color: #57606a; display: flex; align-items: center; justify-content: center; height: 400px;">
<p>{{.}}</p>
</body>
</html>
`
