package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// event is the subset of gridview's event log line that the summary reads.
type event struct {
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Dataset   string            `json:"dataset"`
	Query     string            `json:"query"`
	Rows      int               `json:"rows"`
	Extra     map[string]string `json:"extra"`
	line      int
}

type sessionSummary struct {
	SessionID     string         `json:"session_id"`
	UserID        string         `json:"user_id,omitempty"`
	StartLine     int            `json:"start_line"`
	EndLine       int            `json:"end_line"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	Datasets      []string       `json:"datasets"`
	Events        map[string]int `json:"events"`
	Searches      int            `json:"searches"`
	EmptySearches int            `json:"empty_searches"`
	LoadCount     int            `json:"load_count"`
	LoadMsMedian  float64        `json:"load_ms_median"`
	RowsLoaded    int64          `json:"rows_loaded"`
	Anomalies     []string       `json:"anomalies"`
}

type report struct {
	Source    string           `json:"source"`
	Skipped   int              `json:"skipped_lines"`
	Sessions  []sessionSummary `json:"sessions"`
	Totals    map[string]int   `json:"totals"`
	Datasets  map[string]int   `json:"datasets"`
	TopQuery  []queryCount     `json:"top_queries,omitempty"`
	FirstSeen time.Time        `json:"first_seen"`
	LastSeen  time.Time        `json:"last_seen"`
}

type queryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

const slowLoad = 10 * time.Second

func main() {
	var inputPath string
	var outputPath string
	var since time.Duration
	var asTable bool
	var top int
	flag.StringVar(&inputPath, "in", "", "events.ndjson path (required)")
	flag.StringVar(&outputPath, "out", "", "output path (optional, defaults to stdout)")
	flag.DurationVar(&since, "since", 0, "only read events newer than this (0 reads everything)")
	flag.BoolVar(&asTable, "table", false, "print a session table instead of JSON")
	flag.IntVar(&top, "top", 5, "number of most frequent search queries to list")
	flag.Parse()

	if inputPath == "" {
		exit(errors.New("missing --in path"))
	}
	if top < 0 {
		exit(errors.New("--top must not be negative"))
	}

	var cutoff time.Time
	if since > 0 {
		cutoff = time.Now().Add(-since)
	}
	events, skipped, err := parseEvents(inputPath, cutoff)
	if err != nil {
		exit(fmt.Errorf("parse events: %w", err))
	}
	rep := buildReport(inputPath, events, top)
	rep.Skipped = skipped

	out := io.Writer(os.Stdout)
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			exit(fmt.Errorf("create output: %w", err))
		}
		defer f.Close()
		out = f
	}
	if asTable {
		err = writeTable(out, rep, time.Now())
	} else {
		err = writeJSON(out, rep)
	}
	if err != nil {
		exit(err)
	}
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "gridlog: %v\n", err)
	os.Exit(1)
}

// parseEvents reads one JSON event per line. Lines that do not decode are
// counted and skipped.
func parseEvents(path string, cutoff time.Time) ([]event, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	var (
		scanner = bufio.NewScanner(file)
		lineNo  = 0
		skipped = 0
		out     []event
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev event
		if err := json.Unmarshal([]byte(line), &ev); err != nil || ev.Event == "" {
			skipped++
			continue
		}
		if !cutoff.IsZero() && ev.Timestamp.Before(cutoff) {
			continue
		}
		ev.line = lineNo
		out = append(out, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return out, skipped, nil
}

func buildReport(path string, events []event, top int) report {
	rep := report{
		Source:   path,
		Totals:   map[string]int{},
		Datasets: map[string]int{},
	}
	if len(events) == 0 {
		return rep
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })
	rep.FirstSeen = events[0].Timestamp
	rep.LastSeen = events[len(events)-1].Timestamp

	bySession := map[string][]event{}
	var order []string
	queries := map[string]int{}
	for _, ev := range events {
		rep.Totals[ev.Event]++
		if ev.Dataset != "" {
			rep.Datasets[ev.Dataset]++
		}
		if ev.Event == "search" {
			if q := strings.TrimSpace(ev.Query); q != "" {
				queries[q]++
			}
		}
		if _, ok := bySession[ev.SessionID]; !ok {
			order = append(order, ev.SessionID)
		}
		bySession[ev.SessionID] = append(bySession[ev.SessionID], ev)
	}
	for _, id := range order {
		rep.Sessions = append(rep.Sessions, summarizeSession(bySession[id]))
	}
	rep.TopQuery = topQueries(queries, top)
	return rep
}

func summarizeSession(events []event) sessionSummary {
	first, last := events[0], events[len(events)-1]
	s := sessionSummary{
		SessionID: first.SessionID,
		UserID:    first.UserID,
		StartLine: first.line,
		EndLine:   last.line,
		StartTime: first.Timestamp,
		EndTime:   last.Timestamp,
		Events:    map[string]int{},
	}
	seen := map[string]bool{}
	var loads []int64
	for _, ev := range events {
		s.Events[ev.Event]++
		if ev.Dataset != "" && !seen[ev.Dataset] {
			seen[ev.Dataset] = true
			s.Datasets = append(s.Datasets, ev.Dataset)
		}
		if ev.line < s.StartLine {
			s.StartLine = ev.line
		}
		if ev.line > s.EndLine {
			s.EndLine = ev.line
		}
		switch ev.Event {
		case "search":
			s.Searches++
			if ev.Rows == 0 && strings.TrimSpace(ev.Query) != "" {
				s.EmptySearches++
			}
		case "load":
			s.LoadCount++
			s.RowsLoaded += int64(ev.Rows)
			if d, err := time.ParseDuration(ev.Extra["took"]); err == nil {
				loads = append(loads, d.Milliseconds())
			}
		}
	}
	s.LoadMsMedian = computeMedian(loads)
	s.Anomalies = detectAnomalies(s, loads)
	return s
}

func computeMedian(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

func detectAnomalies(s sessionSummary, loads []int64) []string {
	var out []string
	if s.Searches > 0 && s.EmptySearches*2 > s.Searches {
		out = append(out, fmt.Sprintf("%d of %d searches found nothing", s.EmptySearches, s.Searches))
	}
	for _, ms := range loads {
		if time.Duration(ms)*time.Millisecond > slowLoad {
			out = append(out, fmt.Sprintf("slow load %dms", ms))
			break
		}
	}
	if s.SessionID == "" {
		out = append(out, "events without a session id")
	}
	return out
}

func topQueries(counts map[string]int, n int) []queryCount {
	if n == 0 || len(counts) == 0 {
		return nil
	}
	out := make([]queryCount, 0, len(counts))
	for q, c := range counts {
		out = append(out, queryCount{Query: q, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func writeJSON(w io.Writer, rep report) error {
	encoded, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = w.Write(append(encoded, '\n'))
	return err
}

func writeTable(w io.Writer, rep report, now time.Time) error {
	table := tablewriter.NewWriter(w)
	table.Header("Session", "User", "Started", "Length", "Events", "Searches", "Rows loaded", "Datasets")
	for _, s := range rep.Sessions {
		total := 0
		for _, n := range s.Events {
			total += n
		}
		id := s.SessionID
		if len(id) > 8 {
			id = id[:8]
		}
		if err := table.Append([]string{
			id,
			s.UserID,
			humanize.RelTime(s.StartTime, now, "ago", "from now"),
			s.EndTime.Sub(s.StartTime).Round(time.Second).String(),
			humanize.Comma(int64(total)),
			fmt.Sprintf("%d (%d empty)", s.Searches, s.EmptySearches),
			humanize.Comma(s.RowsLoaded),
			strings.Join(s.Datasets, ", "),
		}); err != nil {
			return fmt.Errorf("append session: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	if rep.Skipped > 0 {
		fmt.Fprintf(w, "%s unreadable lines skipped\n", humanize.Comma(int64(rep.Skipped)))
	}
	for _, q := range rep.TopQuery {
		fmt.Fprintf(w, "%-30q %s\n", q.Query, humanize.Comma(int64(q.Count)))
	}
	return nil
}
