// Package pipeline loads a bibliography and publishes it into a page's display regions.
package pipeline

import (
	"context"
	"fmt"
	"html/template"
	"strconv"

	"github.com/matsen/pubsite/internal/publist"
	"github.com/matsen/pubsite/internal/source"
	"go.uber.org/zap"
)

// Document is the set of display regions the orchestrator writes to.
// Both setters report false when the region does not exist.
type Document interface {
	SetInnerHTML(id string, html template.HTML) bool
	SetText(id, text string) bool
}

// Regions names the display regions by element id.
type Regions struct {
	JournalList     string `yaml:"journal_list" koanf:"journal_list"`
	ConferenceList  string `yaml:"conference_list" koanf:"conference_list"`
	TotalCount      string `yaml:"total_count" koanf:"total_count"`
	JournalCount    string `yaml:"journal_count" koanf:"journal_count"`
	ConferenceCount string `yaml:"conference_count" koanf:"conference_count"`
}

// DefaultRegions returns the element ids used by the stock publications page.
func DefaultRegions() Regions {
	return Regions{
		JournalList:     "journal-list",
		ConferenceList:  "conference-list",
		TotalCount:      "total-publications",
		JournalCount:    "total-journal-pubs",
		ConferenceCount: "total-conference-pubs",
	}
}

// State is the orchestrator lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRendered
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Orchestrator runs one bibliography load into one document.
// It is not safe for concurrent use; one Run per page render.
type Orchestrator struct {
	Source  source.Source
	Regions Regions
	Logger  *zap.Logger

	state State
}

// New creates an orchestrator with the default regions.
func New(src source.Source, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		Source:  src,
		Regions: DefaultRegions(),
		Logger:  logger,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return o.state
}

// Run loads the bibliography and updates doc.
//
// On success both lists are replaced and the counters set; missing counter
// regions are skipped. On failure both lists show the same error block and
// the counters are left as they were.
func (o *Orchestrator) Run(ctx context.Context, doc Document) Result {
	logger := o.logger()
	o.state = StateLoading

	result := Load(ctx, o.Source)
	if !result.OK() {
		o.fail(doc, result.Err())
		return result
	}

	buckets := Partition(result.Entries())
	journalHTML, err := publist.RenderList(buckets.Journal)
	if err != nil {
		o.fail(doc, err)
		return Failed(err)
	}
	conferenceHTML, err := publist.RenderList(buckets.Conference)
	if err != nil {
		o.fail(doc, err)
		return Failed(err)
	}

	doc.SetInnerHTML(o.Regions.JournalList, journalHTML)
	doc.SetInnerHTML(o.Regions.ConferenceList, conferenceHTML)

	counts := buckets.Counts()
	o.setCounter(doc, o.Regions.TotalCount, counts.Total)
	o.setCounter(doc, o.Regions.JournalCount, counts.Journal)
	o.setCounter(doc, o.Regions.ConferenceCount, counts.Conference)

	o.state = StateRendered
	logger.Debug("bibliography rendered",
		zap.Int("total", counts.Total),
		zap.Int("journal", counts.Journal),
		zap.Int("conference", counts.Conference),
		zap.Int("other", len(buckets.Other)),
	)
	return result
}

// fail logs err and writes the error block into both list regions.
func (o *Orchestrator) fail(doc Document, err error) {
	o.state = StateFailed
	o.logger().Error("could not load bibliography", zap.Error(err))

	block := publist.ErrorBlock(err)
	doc.SetInnerHTML(o.Regions.JournalList, block)
	doc.SetInnerHTML(o.Regions.ConferenceList, block)
}

func (o *Orchestrator) setCounter(doc Document, id string, n int) {
	if id == "" {
		return
	}
	if !doc.SetText(id, strconv.Itoa(n)) {
		o.logger().Debug("counter region not present", zap.String("id", id))
	}
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
