// internal/server/index.go
package server

import "net/http"

// handleIndex serves the single-page chat UI.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>CSV Chat</title>
    <style>
        body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6f8; color: #1c1e21; }
        .container { max-width: 960px; margin: 0 auto; padding: 24px; }
        header h1 { margin: 0 0 4px; }
        header p { margin: 0 0 24px; color: #5f6368; }
        .panel { background: #fff; border: 1px solid #e0e3e8; border-radius: 8px; padding: 16px; margin-bottom: 16px; }
        textarea { width: 100%; box-sizing: border-box; min-height: 64px; padding: 8px; }
        button { padding: 8px 16px; border: 0; border-radius: 6px; background: #1a73e8; color: #fff; cursor: pointer; }
        button:disabled { background: #9bb8e8; }
        table { border-collapse: collapse; width: 100%; margin-top: 8px; }
        th, td { border: 1px solid #e0e3e8; padding: 6px 10px; text-align: left; font-size: 14px; }
        th { background: #f0f2f5; }
        .error { color: #c5221f; }
        .muted { color: #5f6368; font-size: 13px; }
        .bar-row { display: flex; align-items: center; gap: 8px; margin: 2px 0; font-size: 13px; }
        .bar { background: #1a73e8; height: 16px; border-radius: 3px; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>CSV Chat</h1>
            <p>Upload a CSV file and ask questions about it in plain language.</p>
        </header>

        <div class="panel">
            <h3>1. Upload CSV</h3>
            <input type="file" id="file" accept=".csv">
            <button id="upload">Upload</button>
            <div id="dataset"></div>
        </div>

        <div class="panel">
            <h3>2. Ask a question</h3>
            <textarea id="question" placeholder="e.g. what is the average age?"></textarea>
            <button id="ask">Ask</button>
            <div id="answer"></div>
        </div>
    </div>

    <script>
    let sessionId = null;

    async function ensureSession() {
        if (sessionId) return sessionId;
        const res = await fetch('/api/sessions', {method: 'POST'});
        const body = await res.json();
        sessionId = body.id;
        return sessionId;
    }

    function renderTable(columns, rows) {
        let html = '<table><tr>';
        for (const c of columns) html += '<th>' + escapeHTML(c) + '</th>';
        html += '</tr>';
        for (const row of rows) {
            html += '<tr>';
            for (const cell of row) html += '<td>' + escapeHTML(cell) + '</td>';
            html += '</tr>';
        }
        return html + '</table>';
    }

    function renderChart(chart) {
        const max = Math.max(...chart.values.map(Math.abs), 1);
        let html = '<h4>' + escapeHTML(chart.title || '') + '</h4>';
        for (let i = 0; i < chart.labels.length; i++) {
            const width = Math.round(Math.abs(chart.values[i]) / max * 100);
            html += '<div class="bar-row"><span style="min-width:120px">' + escapeHTML(chart.labels[i]) +
                '</span><div class="bar" style="width:' + width + '%"></div><span>' + chart.values[i] + '</span></div>';
        }
        return html;
    }

    function escapeHTML(v) {
        return String(v).replace(/[&<>"']/g, c => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;',"'":'&#39;'}[c]));
    }

    function showError(el, body) {
        const msg = body && body.error ? body.error.message + (body.error.details ? ' (' + body.error.details + ')' : '') : 'request failed';
        el.innerHTML = '<p class="error">' + escapeHTML(msg) + '</p>';
    }

    document.getElementById('upload').onclick = async () => {
        const input = document.getElementById('file');
        const out = document.getElementById('dataset');
        if (!input.files.length) { out.innerHTML = '<p class="error">Choose a CSV file first.</p>'; return; }

        const id = await ensureSession();
        const form = new FormData();
        form.append('file', input.files[0]);

        const res = await fetch('/api/sessions/' + id + '/dataset', {method: 'POST', body: form});
        const body = await res.json();
        if (!res.ok) { showError(out, body); return; }

        out.innerHTML = '<p class="muted">' + body.rowCount + ' rows, ' + body.columns.length + ' columns</p>' +
            renderTable(body.columns.map(c => c.name + ' (' + c.type + ')'), body.rows);
    };

    document.getElementById('ask').onclick = async () => {
        const out = document.getElementById('answer');
        const question = document.getElementById('question').value;
        const button = document.getElementById('ask');

        const id = await ensureSession();
        button.disabled = true;
        out.innerHTML = '<p class="muted">Thinking…</p>';

        try {
            const res = await fetch('/api/sessions/' + id + '/query', {
                method: 'POST',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify({question}),
            });
            const body = await res.json();
            if (!res.ok) { showError(out, body); return; }

            if (body.kind === 'table') out.innerHTML = renderTable(body.table.columns, body.table.rows);
            else if (body.kind === 'chart') out.innerHTML = renderChart(body.chart);
            else if (body.kind === 'number') out.innerHTML = '<p><strong>' + body.number + '</strong></p>';
            else out.innerHTML = '<p>' + escapeHTML(body.text) + '</p>';
        } finally {
            button.disabled = false;
        }
    };
    </script>
</body>
</html>
`
