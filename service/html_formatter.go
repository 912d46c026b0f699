package service

import (
	"html/template"
	"io"
	"sort"

	"github.com/ludo-technologies/argscan/domain"
)

// ArityBucket is one bar of the parameter count histogram
type ArityBucket struct {
	Arity   int
	Count   int
	Percent int
}

// HTMLData represents the data for HTML template
type HTMLData struct {
	GeneratedAt  string
	Version      string
	Functions    []domain.FunctionArity
	FilesCount   int
	Analyzed     int
	Flagged      int
	MaxArity     int
	MinArgs      int
	Partial      bool
	FailedFiles  int
	Distribution []ArityBucket
}

// newHTMLData flattens a response for the template
func newHTMLData(response *domain.ArityResponse) HTMLData {
	arities := make([]int, 0, len(response.Functions))
	for _, fn := range response.Functions {
		arities = append(arities, fn.Arity)
	}

	return HTMLData{
		GeneratedAt:  response.GeneratedAt,
		Version:      response.Version,
		Functions:    response.Functions,
		FilesCount:   response.Summary.FilesAnalyzed,
		Analyzed:     response.Summary.FunctionsAnalyzed,
		Flagged:      len(response.Functions),
		MaxArity:     response.Summary.MaxArity,
		MinArgs:      response.Summary.MinArgs,
		Partial:      response.Summary.Partial,
		FailedFiles:  response.Summary.FailedFiles,
		Distribution: arityDistribution(arities),
	}
}

// arityDistribution counts flagged functions per parameter count, ascending.
// Percent is relative to the largest bucket.
func arityDistribution(arities []int) []ArityBucket {
	counts := make(map[int]int)
	for _, a := range arities {
		counts[a]++
	}

	buckets := make([]ArityBucket, 0, len(counts))
	largest := 0
	for arity, count := range counts {
		buckets = append(buckets, ArityBucket{Arity: arity, Count: count})
		if count > largest {
			largest = count
		}
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Arity < buckets[j].Arity })

	for i := range buckets {
		buckets[i].Percent = buckets[i].Count * 100 / largest
	}
	return buckets
}

var htmlReport = template.Must(template.New("arity").Funcs(template.FuncMap{
	"severityClass": func(arity, minArgs int) string {
		switch {
		case arity > minArgs*2:
			return "severity-critical"
		case arity > minArgs+2:
			return "severity-warning"
		default:
			return "severity-info"
		}
	},
}).Parse(htmlTemplate))

func writeHTML(data HTMLData, writer io.Writer) error {
	return htmlReport.Execute(writer, data)
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>argscan Report</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            background: linear-gradient(135deg, #b7410e 0%, #5a2a0c 100%);
            min-height: 100vh;
        }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        .header, .panel {
            background: white;
            border-radius: 10px;
            padding: 30px;
            margin-bottom: 20px;
            box-shadow: 0 10px 30px rgba(0,0,0,0.1);
        }
        .header h1 { color: #b7410e; margin-bottom: 10px; }
        .subtitle { color: #666; font-size: 14px; }
        .partial {
            margin-top: 12px;
            padding: 8px 14px;
            border-radius: 6px;
            background: #fff3e0;
            color: #e65100;
            font-weight: 600;
        }
        .metric-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 20px;
            margin: 20px 0;
        }
        .metric-card { background: #f8f9fa; padding: 20px; border-radius: 8px; text-align: center; }
        .metric-value { font-size: 32px; font-weight: bold; color: #b7410e; }
        .metric-label { color: #666; margin-top: 5px; }
        .bar-row { display: flex; align-items: center; margin-bottom: 10px; font-size: 14px; }
        .bar-label { width: 140px; font-weight: 600; }
        .bar-container { flex: 1; height: 12px; background: #e0e0e0; border-radius: 6px; overflow: hidden; }
        .bar-fill { height: 100%; background: linear-gradient(90deg, #ff9800, #f44336); border-radius: 6px; }
        .bar-count { width: 60px; text-align: right; color: #666; }
        .table { width: 100%; border-collapse: collapse; margin: 20px 0; }
        .table th, .table td { padding: 12px; text-align: left; border-bottom: 1px solid #ddd; }
        .table th { background: #f8f9fa; font-weight: 600; }
        .severity-critical { color: #f44336; font-weight: bold; }
        .severity-warning { color: #ff9800; font-weight: bold; }
        .severity-info { color: #2196f3; }
        .ok { color: #4caf50; font-weight: bold; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>argscan Report</h1>
            <p class="subtitle">Generated: {{.GeneratedAt}} | Version: {{.Version}} | Threshold: more than {{.MinArgs}} parameters</p>
            {{if .Partial}}
            <div class="partial">Partial report: {{.FailedFiles}} files failed to parse</div>
            {{end}}
        </div>

        <div class="panel">
            <h2>Summary</h2>
            <div class="metric-grid">
                <div class="metric-card">
                    <div class="metric-value">{{.FilesCount}}</div>
                    <div class="metric-label">Files Analyzed</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.Analyzed}}</div>
                    <div class="metric-label">Functions Analyzed</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.Flagged}}</div>
                    <div class="metric-label">Flagged</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.MaxArity}}</div>
                    <div class="metric-label">Max Parameters</div>
                </div>
            </div>

            {{if .Distribution}}
            <h3>Distribution</h3>
            {{range .Distribution}}
            <div class="bar-row">
                <span class="bar-label">{{.Arity}} parameters</span>
                <div class="bar-container"><div class="bar-fill" style="width: {{.Percent}}%"></div></div>
                <span class="bar-count">{{.Count}}</span>
            </div>
            {{end}}
            {{end}}
        </div>

        <div class="panel">
            <h2>Functions</h2>
            {{if .Flagged}}
            <table class="table">
                <thead>
                    <tr>
                        <th>Function</th>
                        <th>Location</th>
                        <th>Parameters</th>
                        <th>Kind</th>
                    </tr>
                </thead>
                <tbody>
                    {{$min := .MinArgs}}
                    {{range .Functions}}
                    <tr>
                        <td>{{.Name}}</td>
                        <td>{{.FilePath}}:{{.Line}}:{{.Column}}</td>
                        <td class="{{severityClass .Arity $min}}">{{.Arity}}</td>
                        <td>{{.Kind}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
            {{else}}
            <p class="ok">No function declares more than {{.MinArgs}} parameters</p>
            {{end}}
        </div>
    </div>
</body>
</html>`
