package exports

import (
	"bytes"
	"html/template"

	"transparency-backend/internal/rubric"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>GenAI Transparency Report - {{.FileName}}</title>
<style>body{font-family:Arial,sans-serif;max-width:800px;margin:40px auto;padding:20px;background:#f8fafc;color:#1e293b}h1{color:#1e293b;border-bottom:2px solid #e2e8f0;padding-bottom:10px}.score-box{background:linear-gradient(135deg,#3b82f6,#ef4444);color:white;padding:30px;border-radius:12px;text-align:center;margin:30px 0;box-shadow:0 10px 15px -3px rgba(0,0,0,0.1)}.total{font-size:56px;font-weight:bold;line-height:1}.var{margin:20px 0;padding:20px;background:white;border-left:5px solid #3b82f6;border-radius:0 8px 8px 0;box-shadow:0 1px 3px rgba(0,0,0,0.1)}.var h3{margin:0 0 10px;color:#3b82f6}.quote{background:#f1f5f9;padding:15px;border-radius:6px;font-family:monospace;font-size:0.9rem;margin-top:15px;border:1px solid #e2e8f0;color:#334155}</style></head>
<body><h1>GenAI Transparency Coding Report</h1>
<p><strong>File:</strong> {{.FileName}}<br><strong>Model:</strong> {{.Model}}<br><strong>Date:</strong> {{.Date}}</p>
<div class="score-box"><div class="total">{{.Total}}</div><div style="font-size:1.2rem;margin-top:10px;opacity:0.9">{{.Category}} Transparency</div></div>
{{range .Vars}}<div class="var"><h3>{{.Code}}. {{.Short}}: {{.Score}}</h3><p><strong>EN:</strong> {{.EN}}</p><p><strong>TR:</strong> {{.TR}}</p>{{if .Quote}}<div class="quote">"{{.Quote}}"</div>{{end}}</div>
{{end}}</body></html>
`))

type reportVar struct {
	Code  string
	Short string
	Score string
	EN    string
	TR    string
	Quote string
}

type reportData struct {
	FileName string
	Model    string
	Date     string
	Total    string
	Category string
	Vars     []reportVar
}

// HTML renders a self-contained report. All values are escaped.
func HTML(s Subject) (File, error) {
	data := reportData{
		FileName: s.FileName,
		Model:    s.Model,
		Date:     s.Date.Format("2006-01-02 15:04:05 MST"),
		Total:    orDefault(formatScore(s.Result.TotalScore), "N/A"),
		Category: s.Result.Category,
	}
	for _, spec := range rubric.Variables {
		v := s.Result.Variable(spec.Key)
		rv := reportVar{Code: spec.Code, Short: spec.Short, Score: "N/F", EN: "N/A", TR: "N/A"}
		if v != nil {
			rv.Score = orDefault(formatScore(v.Score), "N/F")
			rv.EN = orDefault(v.ExplanationEN, "N/A")
			rv.TR = orDefault(v.ExplanationTR, "N/A")
			rv.Quote = v.Quote
		}
		data.Vars = append(data.Vars, rv)
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return File{}, err
	}
	return File{Name: "report_" + Stem(s.FileName) + ".html", ContentType: "text/html; charset=utf-8", Data: buf.Bytes()}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
