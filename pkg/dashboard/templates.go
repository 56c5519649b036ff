package dashboard

import "html/template"

var indexTemplate = template.Must(template.New("index").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{ .Title }}</title>
  <style>
    body { font-family: sans-serif; display: flex; margin: 0; }
    aside { width: 280px; padding: 16px; background: #f0f2f6; min-height: 100vh; }
    main { padding: 16px; }
    label { display: block; margin-top: 12px; }
    .warning { background: #fff3cd; padding: 8px; }
    .error { background: #f8d7da; padding: 8px; }
    table td { padding: 2px 8px; }
  </style>
</head>
<body>
  <aside>
    <form method="post" action="/load">
      <label>Year
        <select name="year">
          {{ range .Years }}<option value="{{ . }}"{{ if eq . $.Selected.Year }} selected{{ end }}>{{ . }}</option>{{ end }}
        </select>
      </label>
      <label>Race name
        <input type="text" name="race" value="{{ .Selected.Race }}">
      </label>
      <label>Session type
        <select name="session">
          {{ range .Sessions }}<option value="{{ . }}"{{ if eq . $.Selected.Session }} selected{{ end }}>{{ . }}</option>{{ end }}
        </select>
      </label>
      <p><button type="submit">Load Race Session</button></p>
    </form>
  </aside>
  <main>
    <h1>{{ .Title }}</h1>
    <p>Status: <span id="status">{{ .Status }}</span></p>
    {{ if .Warning }}<p class="warning">{{ .Warning }}</p>{{ end }}
    {{ if .Error }}<p class="error">{{ .Error }}</p>{{ end }}
    {{ if .Drivers }}
    <form method="get" action="/figure">
      <table>
        <tr><th>Driver</th><th>Lap</th></tr>
        {{ range .Drivers }}
        <tr>
          <td><label><input type="checkbox" name="driver" value="{{ .Code }}"{{ if .Checked }} checked{{ end }}> {{ .Code }}</label></td>
          <td>
            <select name="lap_{{ .Code }}">
              {{ range .Laps }}<option value="{{ . }}">{{ . }}</option>{{ end }}
            </select>
          </td>
        </tr>
        {{ end }}
      </table>
      <p><button type="submit">Show figure</button></p>
    </form>
    {{ end }}
  </main>
</body>
</html>
`))

var figureTemplate = template.Must(template.New("figure").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{ .Title }}</title>
  <style>
    body { font-family: sans-serif; }
    .figure { position: relative; width: {{ .Width }}px; height: {{ .Height }}px; }
    .figure svg { position: absolute; top: 0; left: 0; width: {{ .Width }}px; height: {{ .Height }}px; }
    .legend span { display: inline-block; margin-right: 16px; }
    .legend i { display: inline-block; width: 10px; height: 10px; border-radius: 5px; margin-right: 4px; }
    .warning { background: #fff3cd; padding: 8px; }
  </style>
</head>
<body>
  <h1>{{ .Title }}</h1>
  <p>{{ .Session }} <a href="/">back</a></p>
  {{ range .Warnings }}<p class="warning">{{ . }}</p>{{ end }}
  {{ if .SVG }}
  <div class="legend">
    {{ range .Legend }}<span><i style="background: {{ .Color }}"></i>{{ .Label }}</span>{{ end }}
  </div>
  <div class="figure">
    {{ .SVG }}
    <svg id="markers" xmlns="http://www.w3.org/2000/svg"></svg>
  </div>
  <p><button id="play">Play</button> <span id="frame">0</span> / {{ .Total }}</p>

  <script>
    const query = {{ .Query }};
    const markers = document.getElementById('markers');
    const frameLabel = document.getElementById('frame');
    const cars = new Map();

    function drawFrame(frame) {
      for (const m of frame.markers) {
        let circle = cars.get(m.driver);
        if (!circle) {
          circle = document.createElementNS('http://www.w3.org/2000/svg', 'circle');
          circle.setAttribute('r', 5);
          circle.setAttribute('fill', m.color);
          markers.appendChild(circle);
          cars.set(m.driver, circle);
        }
        circle.setAttribute('cx', m.x);
        circle.setAttribute('cy', m.y);
      }
      frameLabel.textContent = frame.index + 1;
    }

    fetch('/figure/frames/0?' + query)
      .then((response) => response.json())
      .then(drawFrame)
      .catch((error) => console.error(error));

    document.getElementById('play').addEventListener('click', () => {
      const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
      const socket = new WebSocket(scheme + location.host + '/play?' + query);
      socket.addEventListener('open', () => socket.send('play'));
      socket.addEventListener('message', (event) => drawFrame(JSON.parse(event.data)));
      socket.addEventListener('error', (event) => console.error('WebSocket error:', event));
    });
  </script>
  {{ end }}
</body>
</html>
`))
