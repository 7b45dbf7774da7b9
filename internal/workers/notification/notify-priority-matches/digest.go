// internal/workers/notification/notify-priority-matches/digest.go
package notifyprioritymatches

import (
	"bytes"
	htmltemplate "html/template"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"scholarship-workers/internal/models"
)

// smsLimit is one GSM-7 SMS segment.
const smsLimit = 160

type digestItem struct {
	Name     string
	Provider string
	Tier     string
	Score    string
	Award    string
	Deadline string
}

type digestData struct {
	Greeting string
	Count    int
	Items    []digestItem
	More     int
}

const textDigest = `{{.Greeting}}

We found {{.Count}} scholarship{{if ne .Count 1}}s{{end}} worth your attention:
{{range .Items}}
- {{.Name}} ({{.Provider}})
  {{.Tier}} | match {{.Score}}{{if .Award}} | award {{.Award}}{{end}}{{if .Deadline}} | due {{.Deadline}}{{end}}
{{end}}{{if .More}}
...and {{.More}} more on your dashboard.
{{end}}`

const htmlDigest = `<p>{{.Greeting}}</p>
<p>We found {{.Count}} scholarship{{if ne .Count 1}}s{{end}} worth your attention:</p>
<ul>{{range .Items}}
<li><strong>{{.Name}}</strong> ({{.Provider}})<br>{{.Tier}} &middot; match {{.Score}}{{if .Award}} &middot; award {{.Award}}{{end}}{{if .Deadline}} &middot; due {{.Deadline}}{{end}}</li>{{end}}
</ul>{{if .More}}
<p>...and {{.More}} more on your dashboard.</p>{{end}}`

var (
	textTmpl = template.Must(template.New("digest.txt").Parse(textDigest))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("digest.html").Parse(htmlDigest))
	printer  = message.NewPrinter(language.AmericanEnglish)
)

// priorityMatches keeps notifiable matches, best first: tier, then strategic
// value, then the earliest deadline.
func priorityMatches(matches []models.MatchSummary) []models.MatchSummary {
	out := make([]models.MatchSummary, 0, len(matches))
	for _, m := range matches {
		if m.PriorityTier.Notifiable() {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PriorityTier.Rank() != b.PriorityTier.Rank() {
			return a.PriorityTier.Rank() > b.PriorityTier.Rank()
		}
		if a.StrategicValue != b.StrategicValue {
			return a.StrategicValue > b.StrategicValue
		}
		switch {
		case a.Deadline == nil:
			return false
		case b.Deadline == nil:
			return true
		default:
			return a.Deadline.Before(*b.Deadline)
		}
	})
	return out
}

func buildDigest(name string, matches []models.MatchSummary, limit int) digestData {
	greeting := "Hello,"
	if n := strings.TrimSpace(name); n != "" {
		greeting = "Hello " + n + ","
	}
	d := digestData{Greeting: greeting, Count: len(matches)}

	shown := matches
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
		d.More = len(matches) - limit
	}
	for _, m := range shown {
		item := digestItem{
			Name:     m.Name,
			Provider: m.Provider,
			Tier:     strings.ReplaceAll(string(m.PriorityTier), "_", " "),
			Score:    printer.Sprintf("%.0f%%", m.OverallScore),
		}
		if m.AwardAmount != nil {
			item.Award = printer.Sprintf("$%d", *m.AwardAmount)
		}
		if m.Deadline != nil {
			item.Deadline = m.Deadline.UTC().Format("Jan 2, 2006")
		}
		d.Items = append(d.Items, item)
	}
	return d
}

func renderDigest(d digestData) (text, html string, err error) {
	var tb, hb bytes.Buffer
	if err := textTmpl.Execute(&tb, d); err != nil {
		return "", "", err
	}
	if err := htmlTmpl.Execute(&hb, d); err != nil {
		return "", "", err
	}
	return tb.String(), hb.String(), nil
}

func digestSubject(count int) string {
	if count == 1 {
		return "1 scholarship you should apply for"
	}
	return printer.Sprintf("%d scholarships you should apply for", count)
}

// smsText names the matches at or above minTier and fits one segment.
func smsText(matches []models.MatchSummary, minTier models.PriorityTier) (string, int) {
	var names []string
	for _, m := range matches {
		if m.PriorityTier.Rank() >= minTier.Rank() {
			names = append(names, m.Name)
		}
	}
	if len(names) == 0 {
		return "", 0
	}

	msg := printer.Sprintf("Top scholarship matches (%d): %s. See your dashboard to apply.",
		len(names), strings.Join(names, ", "))
	if r := []rune(msg); len(r) > smsLimit {
		msg = string(r[:smsLimit-3]) + "..."
	}
	return msg, len(names)
}
