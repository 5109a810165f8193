package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bekirdag/gridview/internal/grid"
)

// gridEvent is one line of the JSONL event log. cmd/gridlog reads the same
// shape.
type gridEvent struct {
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Dataset   string            `json:"dataset,omitempty"`
	Trigger   string            `json:"trigger,omitempty"`
	Column    string            `json:"column,omitempty"`
	Query     string            `json:"query,omitempty"`
	Rows      int               `json:"rows,omitempty"`
	Page      int               `json:"page,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

type eventLogger struct {
	path      string
	sessionID string
	userID    string
	dataset   string
	mu        sync.Mutex
}

func newEventLogger(path, sessionID, userID string) *eventLogger {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	return &eventLogger{
		path:      path,
		sessionID: strings.TrimSpace(sessionID),
		userID:    strings.TrimSpace(userID),
	}
}

func (t *eventLogger) SetDataset(name string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.dataset = name
	t.mu.Unlock()
}

func (t *eventLogger) Emit(event gridEvent) {
	if t == nil || strings.TrimSpace(event.Event) == "" {
		return
	}
	if event.SessionID == "" {
		event.SessionID = t.sessionID
	}
	if strings.TrimSpace(event.UserID) == "" {
		event.UserID = t.userID
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if len(event.Extra) == 0 {
		event.Extra = nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if event.Dataset == "" {
		event.Dataset = t.dataset
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(data)
}

func newEventSessionID() string {
	return uuid.NewString()
}

func resolveEventUserID() string {
	candidates := []string{
		os.Getenv("GRIDVIEW_USER"),
		os.Getenv("USER"),
		os.Getenv("USERNAME"),
	}
	for _, candidate := range candidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// gridEventMsg carries a grid callback into the bubbletea loop.
type gridEventMsg struct {
	event gridEvent
	order []grid.ColumnOrder
	width int
}

// gridHooks logs every grid callback and forwards it to ch without blocking;
// a full channel drops the UI notification but never the log line.
func gridHooks(log *eventLogger, ch chan<- gridEventMsg) grid.Hooks {
	send := func(msg gridEventMsg) {
		log.Emit(msg.event)
		select {
		case ch <- msg:
		default:
		}
	}
	return grid.Hooks{
		OnRowClick: func(ev grid.Event, row grid.Row) {
			idx, _ := grid.RowIndex(row)
			send(gridEventMsg{event: gridEvent{Event: "row_click", Trigger: ev.String(), Rows: 1, Extra: map[string]string{"index": strconv.Itoa(idx)}}})
		},
		OnSortComplete: func(ev grid.Event, col grid.Column, rows []grid.Row, order grid.SortOrder) {
			send(gridEventMsg{event: gridEvent{Event: "sort", Trigger: ev.String(), Column: col.Name, Rows: len(rows), Extra: map[string]string{"order": string(order)}}})
		},
		OnSearchComplete: func(ev grid.Event, query string, entries []grid.SearchEntry, rows []grid.Row, count int) {
			send(gridEventMsg{event: gridEvent{Event: "search", Trigger: ev.String(), Query: query, Rows: count, Extra: map[string]string{"filters": strconv.Itoa(len(entries))}}})
		},
		OnPageChange: func(ev grid.Event, page, prevPage, currentPageRows, firstRowNumber int) {
			send(gridEventMsg{event: gridEvent{Event: "page", Trigger: ev.String(), Page: page, Rows: currentPageRows, Extra: map[string]string{
				"previous":  strconv.Itoa(prevPage),
				"first_row": strconv.Itoa(firstRowNumber),
			}}})
		},
		OnColumnResized: func(ev grid.Event, width int, colName string) {
			send(gridEventMsg{event: gridEvent{Event: "column_resize", Trigger: ev.String(), Column: colName, Extra: map[string]string{"width": strconv.Itoa(width)}}, width: width})
		},
		OnColumnDragEnd: func(colName string, order []grid.ColumnOrder) {
			names := make([]string, len(order))
			for i, o := range order {
				names[i] = o.Name
			}
			send(gridEventMsg{event: gridEvent{Event: "column_drag", Column: colName, Extra: map[string]string{"order": strings.Join(names, ",")}}, order: order})
		},
		OnCellUpdate: func(update grid.CellUpdate) {
			extra := map[string]string{"row": strconv.Itoa(update.RowIndex)}
			cols := make([]string, len(update.EditedColumns))
			for i, c := range update.EditedColumns {
				cols[i] = c.ColName
			}
			extra["columns"] = strings.Join(cols, ",")
			send(gridEventMsg{event: gridEvent{Event: "cell_update", Rows: 1, Extra: extra}})
		},
		OnRowSelect: func(ev grid.Event, row grid.Row, selected bool) {
			idx, _ := grid.RowIndex(row)
			send(gridEventMsg{event: gridEvent{Event: "row_select", Trigger: ev.String(), Rows: 1, Extra: map[string]string{
				"index":    strconv.Itoa(idx),
				"selected": strconv.FormatBool(selected),
			}}})
		},
		OnSelectAll: func(ev grid.Event, rows []grid.Row, selected bool) {
			send(gridEventMsg{event: gridEvent{Event: "select_all", Trigger: ev.String(), Rows: len(rows), Extra: map[string]string{"selected": strconv.FormatBool(selected)}}})
		},
	}
}
