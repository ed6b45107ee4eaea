package controller

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	m "gooze.dev/pkg/evomut/internal/model"
)

type fileStat struct {
	path   string
	counts map[m.MutationType]int
	total  int
}

var listedTypes = []m.MutationType{
	m.MutationArithmetic,
	m.MutationComparison,
	m.MutationBoolean,
	m.MutationLogical,
}

func buildFileStats(mutations []m.Mutation) []fileStat {
	info := make(map[m.Path]*fileStat)

	for _, mutation := range mutations {
		stat, ok := info[mutation.FilePath]
		if !ok {
			stat = &fileStat{path: string(mutation.FilePath), counts: make(map[m.MutationType]int)}
			info[mutation.FilePath] = stat
		}

		stat.counts[mutation.Type]++
		stat.total++
	}

	statsList := make([]fileStat, 0, len(info))
	for _, stat := range info {
		statsList = append(statsList, *stat)
	}

	sort.Slice(statsList, func(i, j int) bool {
		return statsList[i].path < statsList[j].path
	})

	return statsList
}

func renderMutationTable(mutations []m.Mutation) string {
	var tableBuffer bytes.Buffer

	header := []string{"Path"}
	for _, typ := range listedTypes {
		header = append(header, string(typ))
	}

	header = append(header, "Total")

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")

	totals := make(map[m.MutationType]int)
	stats := buildFileStats(mutations)

	for _, stat := range stats {
		row := []string{stat.path}
		for _, typ := range listedTypes {
			row = append(row, fmt.Sprintf("%d", stat.counts[typ]))
			totals[typ] += stat.counts[typ]
		}

		row = append(row, fmt.Sprintf("%d", stat.total))
		table.Append(row)
	}

	footer := []string{fmt.Sprintf("Total Files %d", len(stats))}
	for _, typ := range listedTypes {
		footer = append(footer, fmt.Sprintf("%d", totals[typ]))
	}

	footer = append(footer, fmt.Sprintf("%d", len(mutations)))
	table.SetFooter(footer)

	table.Render()

	return tableBuffer.String()
}

func renderGenerationTable(summaries []m.GenerationSummary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Generation", "Best", "Mean", "Killed", "Survived", "Skipped"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, s := range summaries {
		table.Append([]string{
			fmt.Sprintf("%d", s.Generation),
			fmt.Sprintf("%.3f", s.BestFitness),
			fmt.Sprintf("%.3f", s.MeanFitness),
			fmt.Sprintf("%d", s.Killed),
			fmt.Sprintf("%d", s.Survived),
			fmt.Sprintf("%d", s.Skipped),
		})
	}

	table.Render()

	return tableBuffer.String()
}

func renderSurvivorTable(survivors []m.MutationResult) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"ID", "Location", "Type", "Change"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, r := range survivors {
		mu := r.Mutation
		table.Append([]string{
			mu.ShortID(),
			fmt.Sprintf("%s:%d:%d", mu.FilePath, mu.Line, mu.Column),
			string(mu.Type),
			fmt.Sprintf("%s -> %s", mu.Original, mu.Mutated),
		})
	}

	table.Render()

	return tableBuffer.String()
}

func renderDiffs(survivors []m.MutationResult) string {
	var b strings.Builder

	for _, r := range survivors {
		if r.Diff == "" {
			continue
		}

		b.WriteString(r.Diff)
		if !strings.HasSuffix(r.Diff, "\n") {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.2f%%", score*100)
}
