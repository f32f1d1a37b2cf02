// File path: internal/workflow/context.go
package workflow

// Stage names one step of the analysis pipeline, in execution order.
type Stage string

const (
	StageMarket    Stage = "market_analysis"
	StageSWOT      Stage = "swot_analysis"
	StagePersona   Stage = "buyer_persona"
	StageMarketing Stage = "marketing_content"
)

// Stages is the fixed execution order.
var Stages = []Stage{StageMarket, StageSWOT, StagePersona, StageMarketing}

// Entry is one stage output.
type Entry struct {
	Stage Stage
	Text  string
}

// Context accumulates stage outputs. It is append-only: With returns a new
// value and never touches the receiver's entries.
type Context struct {
	entries []Entry
}

func (c Context) With(stage Stage, text string) Context {
	entries := make([]Entry, len(c.entries), len(c.entries)+1)
	copy(entries, c.entries)
	return Context{entries: append(entries, Entry{Stage: stage, Text: text})}
}

// Text returns the output recorded for stage, or "" when it has not run.
func (c Context) Text(stage Stage) string {
	for _, e := range c.entries {
		if e.Stage == stage {
			return e.Text
		}
	}
	return ""
}

func (c Context) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

func (c Context) Len() int {
	return len(c.entries)
}
