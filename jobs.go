package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bekirdag/gridview/internal/source"
)

// loadRequest is one queued data load.
type loadRequest struct {
	title    string
	spec     source.Spec
	timeout  time.Duration
	onFinish func(*source.Result, error)
}

type loadMsg interface {
	isLoad()
}

type loadStartedMsg struct {
	Title string
}

type loadFinishedMsg struct {
	Title  string
	Result *source.Result
	Err    error
	Took   time.Duration
}

type loadChannelClosedMsg struct{}

func (loadStartedMsg) isLoad()       {}
func (loadFinishedMsg) isLoad()      {}
func (loadChannelClosedMsg) isLoad() {}

// loadManager runs data loads one at a time in arrival order.
type loadManager struct {
	queue   []loadRequest
	current *loadRequest
	running bool
	cancel  context.CancelFunc
	ch      <-chan loadMsg
}

func newLoadManager() *loadManager {
	return &loadManager{}
}

func (lm *loadManager) Enqueue(req loadRequest) tea.Cmd {
	lm.queue = append(lm.queue, req)
	return lm.nextCmd()
}

func (lm *loadManager) Running() bool {
	return lm != nil && lm.running
}

// Cancel stops the running load and drops queued ones.
func (lm *loadManager) Cancel() {
	lm.queue = nil
	if lm.cancel != nil {
		lm.cancel()
	}
}

func (lm *loadManager) Handle(msg loadMsg) tea.Cmd {
	switch msg := msg.(type) {
	case loadStartedMsg:
		return lm.waitCmd()
	case loadFinishedMsg:
		if lm.current != nil && lm.current.onFinish != nil {
			lm.current.onFinish(msg.Result, msg.Err)
		}
		return lm.waitCmd()
	case loadChannelClosedMsg:
		if lm.cancel != nil {
			lm.cancel()
			lm.cancel = nil
		}
		lm.running = false
		lm.current = nil
		lm.ch = nil
		return lm.nextCmd()
	}
	return nil
}

func (lm *loadManager) waitCmd() tea.Cmd {
	if lm.ch == nil {
		return nil
	}
	return waitForLoadMsg(lm.ch)
}

func (lm *loadManager) nextCmd() tea.Cmd {
	if lm.running || len(lm.queue) == 0 {
		return nil
	}
	req := lm.queue[0]
	lm.queue = lm.queue[1:]
	lm.current = &req
	lm.running = true

	ctx := context.Background()
	var cancel context.CancelFunc
	if req.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, req.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	lm.cancel = cancel

	ch := make(chan loadMsg, 2)
	lm.ch = ch
	go runLoad(ctx, req, ch)
	return lm.waitCmd()
}

func runLoad(ctx context.Context, req loadRequest, ch chan<- loadMsg) {
	defer close(ch)

	ch <- loadStartedMsg{Title: req.title}
	start := time.Now()
	res, err := source.Load(ctx, req.spec)
	ch <- loadFinishedMsg{Title: req.title, Result: res, Err: err, Took: time.Since(start)}
}

// waitForLoadMsg delivers the next message of a running load. The model
// re-issues it after every message until the channel closes.
func waitForLoadMsg(ch <-chan loadMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return loadChannelClosedMsg{}
		}
		return msg
	}
}
