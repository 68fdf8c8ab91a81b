package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"podcast_studio/episode"
)

const titleWidth = 40

// renderEpisodes prints the trending list for --list: newest first as the
// store returns it, with a footer summing plays.
func renderEpisodes(list []episode.Episode) string {
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tw := table.NewWriter()
	tw.SetStyle(style)
	tw.AppendHeader(table.Row{"Title", "Author", "Voice", "Length", "Views", "Created"})

	var views int64
	for _, e := range list {
		views += e.Views
		tw.AppendRow(table.Row{
			truncate(e.Title, titleWidth),
			e.Author,
			e.VoiceType,
			formatDuration(e.AudioDuration),
			e.Views,
			e.CreatedAt.Format("2006-01-02"),
		})
	}
	tw.AppendFooter(table.Row{fmt.Sprintf("%d episodes", len(list)), "", "", "", views, ""})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Length", Align: text.AlignRight},
		{Name: "Views", Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}

// formatDuration renders seconds as m:ss; unknown durations show as "-".
func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	total := int(seconds + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
